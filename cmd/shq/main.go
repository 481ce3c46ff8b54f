package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/jingw/shellquery"
)

type options struct {
	Delimiter       string `short:"d" long:"delimiter" default:"\\s+" description:"regular expression for splitting lines into columns"`
	FixedString     bool   `short:"F" long:"fixed-string" description:"interpret the delimiter as a fixed string instead of a regex"`
	MaxColumns      int    `short:"c" long:"max-columns" default:"100" description:"maximum number of columns to store; on overflow the final column takes the remainder of the line, and 1 lets you query whole lines"`
	OutputDelimiter string `long:"output-delimiter" default:"\t" description:"string separating output columns"`
	OutputHeader    bool   `short:"H" long:"output-header" description:"include a header row in the output"`

	Dbg bool `long:"dbg" description:"debug mode"`

	Args struct {
		Query string `positional-arg-name:"query" description:"SQL to run; table names are file names, \"-\" is standard input, columns are named c1, c2, ...; the leading SELECT and the FROM clause may be omitted"`
	} `positional-args:"yes" required:"yes"`
}

var revision = "latest"

func main() {
	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	p.LongDescription = longDescription()
	if _, err := p.Parse(); err != nil {
		if err.(*flags.Error).Type != flags.ErrHelp {
			fmt.Printf("%v", err)
		}
		os.Exit(1)
	}

	setupLog(opts.Dbg)
	lgr.Printf("[DEBUG] shq %s", revision)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	res, err := shellquery.Query(ctx, opts.Args.Query, shellquery.Config{
		Delimiter:   opts.Delimiter,
		FixedString: opts.FixedString,
		MaxColumns:  opts.MaxColumns,
	})
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	return shellquery.WriteRows(os.Stdout, res.Rows, opts.OutputDelimiter, opts.OutputHeader)
}

func longDescription() string {
	return `Command line SQL on plain text files and standard input.

Example usage:
  Selecting columns:
    $ echo -e '1 2 3\n4 5 6' | shq 'SELECT c3, c1 FROM "-"'
    3	1
    6	4

  Syntax shortcut (SELECT and FROM optional):
    $ echo -e '1 2 3\n4 5 6' | shq c3,c1
    3	1
    6	4

  Joining files with stdin (web.log has userid,path and users has userid,name):
    $ cat web.log | shq 'SELECT "-".c2, users.c2 FROM "-" JOIN users ON "-".c1 = users.c1'
    /some/path	alice
    /foo/bar	bob
    /blah/blah	bob

See https://www.sqlite.org/lang_select.html for the SQL dialect.`
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Out(os.Stderr), lgr.Err(os.Stderr)}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	colorizer := lgr.Mapper{
		ErrorFunc: func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:  func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:  func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc: func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		TimeFunc:  func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
