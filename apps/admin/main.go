package main

import (
	"log"
	"os"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
	"github.com/trezcool/englishcenter/core/class"
	logsvc "github.com/trezcool/englishcenter/services/logger"
	"github.com/trezcool/englishcenter/storage/database"
	sqlxrepos "github.com/trezcool/englishcenter/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(false)

	// set up DB
	if err := database.CreateIfNotExist(conf.Database); err != nil {
		logger.Fatal(err)
	}
	db, err := database.Open(conf.Database)
	if err != nil {
		logger.Fatal(err)
	}

	validate, _ := core.NewValidator()

	// start CLI
	cli := commandLine{
		db:     db.DB,
		clsSvc: class.NewService(sqlxrepos.NewClassRepository(db), validate),
		attSvc: attendance.NewService(sqlxrepos.NewAttendanceRepository(db), nil, validate, appLogger),
	}
	err = cli.run(os.Args)
	_ = database.Close(db)
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
