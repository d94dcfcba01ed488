package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/seuros/gopher-packstream/packstream"
	"github.com/seuros/gopher-packstream/telemetry"
)

// dumpCommand reads a PackStream byte stream (from a file, or stdin
// when no file is given) and prints a human-readable trace of every
// top-level value decoded, one per line, until the stream is
// exhausted. With --trace, each value's decode is wrapped in an
// OpenTelemetry span and the run's spans/metrics are flushed to stderr
// on exit.
func dumpCommand(args []string) error {
	withTrace, rest := extractTraceFlag(args)
	if len(rest) > 1 {
		return usageErrorf(2, "Usage: packstream dump [--trace] [file]")
	}

	var r io.Reader = os.Stdin
	if len(rest) == 1 {
		f, err := os.Open(rest[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	instr, cfg, shutdown, err := setupTelemetry(withTrace)
	if err != nil {
		return err
	}
	defer shutdown()

	buf := bufio.NewReader(r)
	u := packstream.NewUnpacker(buf)
	for i := 0; ; i++ {
		if _, err := buf.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("reading stream: %w", err)
		}

		_, span := instr.StartUnpack(context.Background(), cfg)
		v, err := u.Unpack()
		instr.Finish(span, cfg, err)
		if err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
		fmt.Printf("[%d] %s\n", i, trace(v))
	}
	return nil
}

// extractTraceFlag pulls every "--trace" flag out of args, wherever it
// appears, returning whether one was present and the remaining arguments.
func extractTraceFlag(args []string) (bool, []string) {
	rest := make([]string, 0, len(args))
	found := false
	for _, a := range args {
		if a == "--trace" {
			found = true
			continue
		}
		rest = append(rest, a)
	}
	return found, rest
}

// setupTelemetry wires an Instruments/Config pair for a CLI command.
// When traced is false, the returned Config has tracing and metrics
// disabled, so StartPack/StartUnpack/Finish are cheap no-ops.
func setupTelemetry(traced bool) (instr *telemetry.Instruments, cfg *telemetry.Config, shutdown func(), err error) {
	if !traced {
		return telemetry.New(), &telemetry.Config{}, func() {}, nil
	}

	providers, err := telemetry.InstallStdoutProviders(os.Stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("installing trace providers: %w", err)
	}
	return telemetry.New(), telemetry.DefaultConfig(), func() {
		_ = providers.Shutdown(context.Background())
	}, nil
}

// trace formats a decoded value with its codec-level type name, so the
// output reads as a marker/value trace rather than a bare Go %v dump.
func trace(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "Null"
	case bool:
		return fmt.Sprintf("Boolean(%v)", t)
	case float64:
		return fmt.Sprintf("Float(%v)", t)
	case packstream.I64:
		return fmt.Sprintf("Integer(%d)", t.Int64())
	case *big.Int:
		return fmt.Sprintf("Integer(%s)", t.String())
	case string:
		return fmt.Sprintf("String(%q)", t)
	case []byte:
		return fmt.Sprintf("Bytes(% x)", t)
	case []interface{}:
		elems := make([]string, len(t))
		for i, e := range t {
			elems[i] = trace(e)
		}
		return fmt.Sprintf("List%v", elems)
	case *packstream.OrderedMap:
		parts := make([]string, 0, t.Len())
		t.Range(func(k string, val interface{}) bool {
			parts = append(parts, fmt.Sprintf("%q: %s", k, trace(val)))
			return true
		})
		return fmt.Sprintf("Map{%s}", joinComma(parts))
	case packstream.Structure:
		fields := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = trace(f)
		}
		return fmt.Sprintf("Structure(sig=0x%02X, fields=%s)", t.Signature, joinComma(fields))
	default:
		return fmt.Sprintf("%T(%v)", t, t)
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
