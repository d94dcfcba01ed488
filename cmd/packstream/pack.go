package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seuros/gopher-packstream/packstream"
)

// packCommand reads a single JSON value from stdin and re-encodes it as
// PackStream to stdout. JSON numbers without a fractional part or
// exponent that fit in an int64 pack as Integer; everything else numeric
// (including integral numbers outside the int64 range) packs as Float64,
// matching the codec's Integer/Float disjointness invariant.
func packCommand(args []string) error {
	withTrace, rest := extractTraceFlag(args)
	if len(rest) != 0 {
		return usageErrorf(2, "Usage: packstream pack [--trace] (reads JSON from stdin)")
	}

	dec := json.NewDecoder(bufio.NewReader(os.Stdin))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return usageErrorf(2, "no JSON value on stdin")
		}
		return fmt.Errorf("parsing JSON: %w", err)
	}

	v, err := fromJSON(raw)
	if err != nil {
		return err
	}

	instr, cfg, shutdown, err := setupTelemetry(withTrace)
	if err != nil {
		return err
	}
	defer shutdown()

	out := bufio.NewWriter(os.Stdout)
	_, span := instr.StartPack(context.Background(), cfg)
	packErr := packstream.NewPacker(out).Pack(v)
	instr.Finish(span, cfg, packErr)
	if packErr != nil {
		return fmt.Errorf("packing: %w", packErr)
	}
	return out.Flush()
}

// fromJSON converts the generic value tree produced by an UseNumber
// json.Decoder into the codec's recognized value domain.
func fromJSON(raw interface{}) (interface{}, error) {
	switch t := raw.(type) {
	case nil, bool, string:
		return t, nil
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := t.Int64(); err == nil {
				return n, nil
			}
		}
		return t.Float64()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, elem := range t {
			v, err := fromJSON(elem)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, elem := range t {
			v, err := fromJSON(elem)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value of type %T", raw)
	}
}
