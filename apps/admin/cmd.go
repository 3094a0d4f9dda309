package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trezcool/englishcenter/core/attendance"
	"github.com/trezcool/englishcenter/core/class"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *sql.DB
	clsSvc *class.Service
	attSvc *attendance.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) over the embedded migrations")
	fmt.Println("  recompute-summaries - re-derive every attendance summary from the attendance records")
	fmt.Println("  recompute-occupancy - re-derive every class' current_students from its active enrollments")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "recompute-summaries":
		n, err := cli.attSvc.RecomputeAllSummaries(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d attendance summaries recomputed\n", n)
		return nil
	case "recompute-occupancy":
		n, err := cli.clsSvc.RecomputeAllOccupancy(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d classes recounted\n", n)
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}
