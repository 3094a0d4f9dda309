package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
	"github.com/trezcool/englishcenter/core/class"
	"github.com/trezcool/englishcenter/core/enrollment"
	logsvc "github.com/trezcool/englishcenter/services/logger"
	inmemdb "github.com/trezcool/englishcenter/storage/database/inmem"
	"github.com/trezcool/englishcenter/tests"
)

var (
	clsRepo class.Repository
	enrRepo enrollment.Repository
	attRepo attendance.Repository
	fx      testutil.Fixture
)

func setup(t *testing.T) *commandLine {
	conf := &core.Config{Env: "TEST", TestMode: true}
	appLogger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	validate, _ := core.NewValidator()

	// set up DB & repos
	db := inmemdb.Open()
	clsRepo = inmemdb.NewClassRepository(db)
	enrRepo = inmemdb.NewEnrollmentRepository(db)
	attRepo = inmemdb.NewAttendanceRepository(db)
	fx = testutil.CreateFixture(t, testutil.FixtureRepos{
		Students: inmemdb.NewStudentRepository(db),
		Teachers: inmemdb.NewTeacherRepository(db),
		Courses:  inmemdb.NewCourseRepository(db),
		Classes:  clsRepo,
		Sessions: inmemdb.NewSessionRepository(db),
	})

	// start CLI
	return &commandLine{
		clsSvc: class.NewService(clsRepo, validate),
		attSvc: attendance.NewService(attRepo, nil, validate, appLogger),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, want an error")
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		if dir != "migrations" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		if _, err := fs.Stat(fsys, dir); err != nil {
			return err
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "add_rooms", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})
}

func Test_commandLine_recomputeOccupancy(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	testutil.CreateEnrollment(t, enrRepo, fx.Students[0].ID, fx.Classes[0].ID, enrollment.StatusActive)
	testutil.CreateEnrollment(t, enrRepo, fx.Students[1].ID, fx.Classes[0].ID, enrollment.StatusCancelled)
	testutil.CreateEnrollment(t, enrRepo, fx.Students[2].ID, fx.Classes[1].ID, enrollment.StatusActive)

	runCLITests(t, cli, []cliTest{
		{name: "recompute-occupancy", args: []string{"recompute-occupancy"}},
	})

	for _, cls := range fx.Classes {
		refreshed, err := clsRepo.Get(ctx, cls.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, refreshed.CurrentStudents, refreshed.Name)
	}
}

func Test_commandLine_recomputeSummaries(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	std, cls := fx.Students[0], fx.Classes[0]
	testutil.MarkAttendance(t, attRepo, fx.Sessions[0].ID, std.ID, attendance.StatusPresent)
	testutil.MarkAttendance(t, attRepo, fx.Sessions[1].ID, std.ID, attendance.StatusAbsent)
	testutil.MarkAttendance(t, attRepo, fx.Sessions[2].ID, std.ID, attendance.StatusLate)

	pair := attendance.Pair{StudentID: std.ID, ClassID: cls.ID}
	_, err := attRepo.GetSummary(ctx, pair)
	require.True(t, core.IsNotFound(err))

	runCLITests(t, cli, []cliTest{
		{name: "recompute-summaries", args: []string{"recompute-summaries"}},
	})

	sum, err := attRepo.GetSummary(ctx, pair)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalSessions)
	assert.Equal(t, 66.67, sum.AttendanceRate)
}
