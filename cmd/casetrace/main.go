// Command casetrace inspects file-system objects recorded in a forensic
// case: print an object's metadata description (istat), stream its content
// (cat), or show its diagnostic state (stat).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/casetrace/casetrace/internal/logger"
	casebadger "github.com/casetrace/casetrace/pkg/casedb/badger"
	"github.com/casetrace/casetrace/pkg/config"
	"github.com/casetrace/casetrace/pkg/datamodel"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: casetrace [flags] <command> <object-id>

Commands:
  istat   print the object's on-disk metadata description
  cat     stream the object's content to stdout
  stat    print the object's diagnostic summary

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	logLevel := flag.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}

	if err := run(*configPath, *logLevel, flag.Arg(0), flag.Arg(1)); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel, command, objArg string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger.SetLevel(cfg.Logging.Level)

	objID, err := strconv.ParseInt(objArg, 10, 64)
	if err != nil {
		return fmt.Errorf("object id %q: %w", objArg, err)
	}

	ctx := context.Background()

	eng, err := config.BuildEngine(ctx, cfg.Engine)
	if err != nil {
		return err
	}

	caseDB, err := casebadger.Open(casebadger.Config{
		Path:   cfg.Case.Path,
		Engine: eng,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := caseDB.Close(); closeErr != nil {
			logger.Warn("closing case: %v", closeErr)
		}
	}()

	obj, err := caseDB.Object(objID)
	if err != nil {
		return err
	}

	switch command {
	case "istat":
		return runIstat(obj)
	case "cat":
		return runCat(obj)
	case "stat":
		fmt.Println(obj.DiagnosticString(true))
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runIstat(obj *datamodel.FsObject) error {
	lines, err := obj.MetaDataText()
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func runCat(obj *datamodel.FsObject) error {
	buf := make([]byte, 64*1024)
	var offset int64

	for remaining := obj.Size(); remaining > 0; {
		length := int64(len(buf))
		if length > remaining {
			length = remaining
		}

		n, err := obj.Read(buf, offset, length)
		if err != nil {
			return err
		}
		if n == 0 {
			// Short read before the declared size: end of stream.
			break
		}

		if _, err := os.Stdout.Write(buf[:n]); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		offset += int64(n)
		remaining -= int64(n)
	}

	return nil
}
