package cache

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/madscore/mads"
)

// WriteTo serializes the cache to w as a CACHE_HITS header, a
// BB_OUTPUT_TYPE header naming the output types the blackbox tier was
// last interpreted under, and one line per cached point: its
// coordinates followed by its raw blackbox outputs, space-separated.
func (c *Cache) WriteTo(w io.Writer, types mads.BBOutputTypeList) (int, error) {
	all := c.snapshot()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "CACHE_HITS %d\n", c.NbCacheHits())
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = t.String()
	}
	fmt.Fprintf(bw, "BB_OUTPUT_TYPE %s\n", strings.Join(typeNames, " "))

	n := 0
	for _, ep := range all {
		e, ok := ep.Evals[mads.EvalTypeBB]
		if !ok || e.Status != mads.EvalOK {
			continue
		}
		fields := make([]string, 0, len(ep.Point.Coords)+len(e.BBOutputs))
		for _, c := range ep.Point.Coords {
			fields = append(fields, c.String())
		}
		for _, o := range e.BBOutputs {
			fields = append(fields, o.String())
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, " ")); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// ReadFrom parses a cache file written by WriteTo, dimension floats of
// point coordinates followed by len(types) floats of raw blackbox
// output, recomputing f and h via mads.ComputeFH for every restored
// point. It returns the CACHE_HITS value from the header.
func ReadFrom(r io.Reader, c *Cache, dimension int) (cacheHits int64, types mads.BBOutputTypeList, err error) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		lineNo++
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "CACHE_HITS") {
			fields := strings.Fields(line)
			if len(fields) == 2 {
				cacheHits, _ = strconv.ParseInt(fields[1], 10, 64)
			}
			continue
		}
		if strings.HasPrefix(line, "BB_OUTPUT_TYPE") {
			fields := strings.Fields(line)[1:]
			types = make(mads.BBOutputTypeList, len(fields))
			for i, f := range fields {
				types[i] = mads.ParseBBOutputType(f)
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != dimension+len(types) {
			return cacheHits, types, fmt.Errorf("cache: line %d has %d fields, want %d", lineNo, len(fields), dimension+len(types))
		}
		coords := make(mads.ArrayOfDouble, dimension)
		for i := 0; i < dimension; i++ {
			v, perr := strconv.ParseFloat(fields[i], 64)
			if perr != nil {
				return cacheHits, types, fmt.Errorf("cache: line %d: %w", lineNo, perr)
			}
			coords[i] = mads.NewDouble(v)
		}
		raw := make(mads.ArrayOfDouble, len(types))
		for i := range types {
			v, perr := strconv.ParseFloat(fields[dimension+i], 64)
			if perr != nil {
				return cacheHits, types, fmt.Errorf("cache: line %d: %w", lineNo, perr)
			}
			raw[i] = mads.NewDouble(v)
		}
		ep := mads.NewEvalPoint(mads.Point{Coords: coords})
		e := ep.Eval(mads.EvalTypeBB)
		e.SetOutputs(raw, types)
		e.Status = mads.EvalOK
		c.Insert(ep)
	}
	if err := sc.Err(); err != nil {
		return cacheHits, types, err
	}
	return cacheHits, types, nil
}
