// Package kernelsrc renders the compute-kernel translation unit for one
// algorithm and output precision.
package kernelsrc

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/samcharles93/clprng/internal/prng"
)

const (
	SeedEntry     = "seed_prng"
	GenerateEntry = "generate_stream"
)

// Unit is an assembled translation unit ready for Context.Build.
type Unit struct {
	Algorithm string
	Precision prng.Precision
	StateSize int
	Source    string
}

type unitData struct {
	Name      string
	Precision string
	OutT      string
	FP64      bool
	Shift     int
	Convert   string
	Fragment  string
	SeedEntry string
	GenEntry  string
}

var unitTmpl = template.Must(template.New("unit").Parse(`#define CLPRNG_ALGORITHM {{.Name}}
#define CLPRNG_PRECISION {{.Precision}}
#define CLPRNG_OUTPUT_T {{.OutT}}
{{if .FP64}}#pragma OPENCL EXTENSION cl_khr_fp64 : enable
{{end}}
inline ulong clprng_splitmix(ulong* s) {
	*s += 0x9e3779b97f4a7c15UL;
	ulong z = *s;
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9UL;
	z = (z ^ (z >> 27)) * 0x94d049bb133111ebUL;
	return z ^ (z >> 31);
}

inline ulong clprng_lane_seed(ulong seed, ulong lane) {
	ulong z = seed + (lane + 1) * 0x9e3779b97f4a7c15UL;
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9UL;
	z = (z ^ (z >> 27)) * 0x94d049bb133111ebUL;
	return z ^ (z >> 31);
}

{{.Fragment}}

inline CLPRNG_OUTPUT_T clprng_convert(ulong n) {
{{- if .Shift}}
	n <<= {{.Shift}};
{{- end}}
	return {{.Convert}};
}

kernel void {{.SeedEntry}}(ulong seed, global {{.Name}}_state* states) {
	uint gid = get_global_id(0);
	{{.Name}}_state s;
	{{.Name}}_seed(&s, clprng_lane_seed(seed, gid));
	states[gid] = s;
}

kernel void {{.GenEntry}}(global {{.Name}}_state* states, global CLPRNG_OUTPUT_T* out, uint count) {
	uint gid = get_global_id(0);
	uint lanes = get_global_size(0);
	{{.Name}}_state s = states[gid];
	for (uint i = gid; i < count; i += lanes) {
		out[i] = clprng_convert((ulong){{.Name}}_next(&s));
	}
	states[gid] = s;
}
`))

// convertExpr matches prng.Precision.Put after the native draw has been
// shifted to the top of a 64-bit word.
func convertExpr(p prng.Precision) string {
	switch p {
	case prng.Uint32:
		return "(uint)(n >> 32)"
	case prng.Uint64:
		return "n"
	case prng.Float32:
		return "(float)(n >> 40) * (1.0f / 16777216.0f)"
	case prng.Float64:
		return "(double)(n >> 11) * (1.0 / 9007199254740992.0)"
	default:
		return ""
	}
}

// Assemble renders the unit for alg at precision p. The output is a pure
// function of its inputs.
func Assemble(alg prng.Algorithm, p prng.Precision) (Unit, error) {
	if !p.Valid() {
		return Unit{}, fmt.Errorf("%w: %s", prng.ErrUnsupportedPrecision, p)
	}
	if err := alg.CheckPrecision(p); err != nil {
		return Unit{}, err
	}
	data := unitData{
		Name:      alg.Name,
		Precision: p.String(),
		OutT:      p.CType(),
		FP64:      p == prng.Float64,
		Convert:   convertExpr(p),
		Fragment:  strings.TrimSpace(alg.Source),
		SeedEntry: SeedEntry,
		GenEntry:  GenerateEntry,
	}
	if alg.NativeBits < 64 {
		data.Shift = 64 - alg.NativeBits
	}
	var buf bytes.Buffer
	if err := unitTmpl.Execute(&buf, data); err != nil {
		return Unit{}, fmt.Errorf("render %s/%s: %w", alg.Name, p, err)
	}
	return Unit{
		Algorithm: alg.Name,
		Precision: p,
		StateSize: alg.StateSize,
		Source:    buf.String(),
	}, nil
}

// Header is the metadata carried by the leading defines of a unit.
type Header struct {
	Algorithm string
	Precision prng.Precision
}

// ParseHeader recovers the algorithm and precision defines from assembled
// source.
func ParseHeader(src string) (Header, error) {
	var h Header
	var havePrecision bool
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 || fields[0] != "#define" {
			continue
		}
		switch fields[1] {
		case "CLPRNG_ALGORITHM":
			h.Algorithm = fields[2]
		case "CLPRNG_PRECISION":
			p, err := prng.ParsePrecision(fields[2])
			if err != nil {
				return Header{}, err
			}
			h.Precision = p
			havePrecision = true
		}
		if h.Algorithm != "" && havePrecision {
			return h, nil
		}
	}
	if err := sc.Err(); err != nil {
		return Header{}, err
	}
	switch {
	case h.Algorithm == "":
		return Header{}, fmt.Errorf("missing CLPRNG_ALGORITHM define")
	default:
		return Header{}, fmt.Errorf("missing CLPRNG_PRECISION define")
	}
}
