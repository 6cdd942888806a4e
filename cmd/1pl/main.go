package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/logicbase/prolog"
	"github.com/logicbase/prolog/engine"
)

// Version is a version of this build.
var Version = "1pl/0.2"

func main() {
	_ = godotenv.Load()

	var (
		verbose bool
		config  string
	)
	pflag.BoolVarP(&verbose, "verbose", "v", false, `verbose`)
	pflag.StringVarP(&config, "config", "c", os.Getenv("ONEPL_CONFIG"), `configuration file`)
	pflag.Parse()

	c := prolog.DefaultConfig()
	if config != "" {
		var err error
		c, err = prolog.LoadConfigFile(config)
		if err != nil {
			logrus.WithError(err).Fatal("failed to load config")
		}
	}
	if verbose {
		c.Debug = true
		logrus.SetLevel(logrus.DebugLevel)
	}

	oldState, err := terminal.MakeRaw(0)
	if err != nil {
		logrus.WithError(err).Panic("failed to enter raw mode")
	}
	restore := func() {
		_ = terminal.Restore(0, oldState)
	}
	defer restore()

	t := terminal.NewTerminal(os.Stdin, "?- ")
	defer fmt.Printf("\r\n")

	logrus.SetOutput(t)

	i, err := New(c, os.Stdin, t)
	if err != nil {
		restore()
		logrus.WithError(err).Fatal("failed to create interpreter")
	}
	defer func() {
		_ = i.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, a := range pflag.Args() {
		if err := i.ConsultFile(ctx, a); err != nil {
			restore()
			logrus.WithError(err).WithField("file", a).Fatal("failed to consult")
		}
	}

	var buf strings.Builder
	keys := bufio.NewReader(os.Stdin)
	for {
		if err := handleLine(ctx, &buf, i, t, keys); err != nil {
			var he *engine.HaltError
			if errors.As(err, &he) {
				restore()
				fmt.Printf("\r\n")
				os.Exit(he.Status)
			}
			if errors.Is(err, io.EOF) {
				return
			}
			logrus.WithError(err).Panic("failed to handle line")
		}
	}
}

func handleLine(ctx context.Context, buf *strings.Builder, i *prolog.Interpreter, t *terminal.Terminal, keys *bufio.Reader) error {
	if buf.Len() == 0 {
		t.SetPrompt("?- ")
	} else {
		t.SetPrompt("|  ")
	}

	line, err := t.ReadLine()
	if err != nil {
		if err == io.EOF {
			return err
		}
		logrus.WithError(err).Error("failed to read line")
		buf.Reset()
		return nil
	}
	if _, err := buf.WriteString(line); err != nil {
		logrus.WithError(err).Error("failed to buffer")
		buf.Reset()
		return nil
	}

	c := 0
	sols, err := i.QueryContext(ctx, buf.String())
	switch {
	case err == nil:
		break
	case errors.Is(err, engine.ErrInsufficient):
		if _, err := buf.WriteRune('\n'); err != nil {
			logrus.WithError(err).Error("failed to buffer")
			buf.Reset()
		}

		// Returns without resetting buf.
		return nil
	default:
		logrus.WithError(err).Error("failed to query")
		buf.Reset()
		return nil
	}

	for sols.Next() {
		c++

		m := map[string]engine.Term{}
		if err := sols.Scan(m); err != nil {
			logrus.WithError(err).Error("failed to scan")
			break
		}

		vars := sols.Vars()
		ls := make([]string, 0, len(vars))
		for _, n := range vars {
			v, ok := m[n]
			if !ok {
				continue
			}
			if _, ok := v.(engine.Variable); ok {
				continue
			}
			var sb strings.Builder
			if err := engine.WriteTerm(&sb, v, nil, engine.WithQuoted(true), engine.WithOps(i.Operators())); err != nil {
				return err
			}
			ls = append(ls, fmt.Sprintf("%s = %s", n, sb.String()))
		}
		if len(ls) == 0 {
			if _, err := fmt.Fprintf(t, "%t.\n", true); err != nil {
				return err
			}
			break
		}

		if _, err := fmt.Fprintf(t, "%s ", strings.Join(ls, ",\n")); err != nil {
			return err
		}

		r, _, err := keys.ReadRune()
		if err != nil {
			logrus.WithError(err).Error("failed to read rune")
			break
		}
		if r != ';' {
			r = '.'
		}

		if _, err := fmt.Fprintf(t, "%s\n", string(r)); err != nil {
			return err
		}

		if r == '.' {
			break
		}
	}
	if err := sols.Close(); err != nil {
		return err
	}
	buf.Reset()

	if err := sols.Err(); err != nil {
		var he *engine.HaltError
		if errors.As(err, &he) {
			return he
		}
		logrus.WithError(err).Error("failed")
		return nil
	}

	if c == 0 {
		if _, err := fmt.Fprintf(t, "%t.\n", false); err != nil {
			return err
		}
	}
	return nil
}
