package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Complexity is an ordinal big-O class. Higher values are worse, and the
// integer order is the single total order used for every max-combination.
type Complexity int

// Complexity classes up to cubic. Polynomial classes above cubic are
// ComplexityCubic + (k - 3) for O(n^k).
const (
	ComplexityConstant Complexity = iota
	ComplexityLogarithmic
	ComplexityLinear
	ComplexityLinearithmic
	ComplexityQuadratic
	ComplexityCubic
)

// maxPolynomialDegree bounds O(n^k) so that garbage input cannot produce huge ordinals.
const maxPolynomialDegree = 16

// ComplexityForLoopDepth maps loop nesting depth to a complexity class.
// 0 is O(1), 1 is O(n), and any deeper nesting d is O(n^d).
func ComplexityForLoopDepth(depth int) Complexity {
	switch {
	case depth <= 0:
		return ComplexityConstant
	case depth == 1:
		return ComplexityLinear
	default:
		depth = min(depth, maxPolynomialDegree)
		return ComplexityQuadratic + Complexity(depth-2)
	}
}

// Degree returns the polynomial degree for O(n^k) classes, or 0 otherwise.
func (c Complexity) Degree() int {
	if c < ComplexityQuadratic {
		return 0
	}
	return int(c-ComplexityQuadratic) + 2
}

// Valid reports whether c is a known class.
func (c Complexity) Valid() bool {
	return c >= ComplexityConstant && c.Degree() <= maxPolynomialDegree
}

// String renders the big-O notation.
func (c Complexity) String() string {
	switch c {
	case ComplexityConstant:
		return "O(1)"
	case ComplexityLogarithmic:
		return "O(log n)"
	case ComplexityLinear:
		return "O(n)"
	case ComplexityLinearithmic:
		return "O(n log n)"
	}
	if c.Valid() {
		return fmt.Sprintf("O(n^%d)", c.Degree())
	}
	return fmt.Sprintf("Complexity(%d)", int(c))
}

// ParseComplexity accepts the common spellings of big-O classes.
func ParseComplexity(s string) (Complexity, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "", "²", "^2", "³", "^3", "**", "^", "*", "", "·", "").Replace(norm)
	norm = strings.TrimSuffix(strings.TrimPrefix(norm, "o("), ")")
	switch norm {
	case "1", "c", "const":
		return ComplexityConstant, nil
	case "logn", "log(n)":
		return ComplexityLogarithmic, nil
	case "n":
		return ComplexityLinear, nil
	case "nlogn", "nlog(n)":
		return ComplexityLinearithmic, nil
	}
	if exp, ok := strings.CutPrefix(norm, "n^"); ok {
		k, err := strconv.Atoi(exp)
		if err == nil && k >= 1 && k <= maxPolynomialDegree {
			if k == 1 {
				return ComplexityLinear, nil
			}
			return ComplexityQuadratic + Complexity(k-2), nil
		}
	}
	return 0, fmt.Errorf("%w: complexity %q", ErrUnknownEnum, s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Complexity) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: complexity %d", ErrUnknownEnum, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Complexity) UnmarshalText(b []byte) error {
	parsed, err := ParseComplexity(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parallelization is the ordinal parallelization potential: low < medium < high.
type Parallelization int

// Parallelization classes.
const (
	ParallelLow Parallelization = iota
	ParallelMedium
	ParallelHigh
)

var parallelizationNames = []string{"low", "medium", "high"}

// Valid reports whether p is a known class.
func (p Parallelization) Valid() bool {
	return p >= ParallelLow && p <= ParallelHigh
}

func (p Parallelization) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Parallelization(%d)", int(p))
	}
	return parallelizationNames[p]
}

// ParseParallelization parses "low", "medium" or "high".
func ParseParallelization(s string) (Parallelization, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for i, name := range parallelizationNames {
		if norm == name {
			return Parallelization(i), nil
		}
	}
	return 0, fmt.Errorf("%w: parallelization %q", ErrUnknownEnum, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Parallelization) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: parallelization %d", ErrUnknownEnum, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Parallelization) UnmarshalText(b []byte) error {
	parsed, err := ParseParallelization(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// TransferType is how network data moves. Streaming dominates bulk.
type TransferType int

// Transfer types.
const (
	TransferBulk TransferType = iota
	TransferStreaming
)

// Valid reports whether t is a known transfer type.
func (t TransferType) Valid() bool {
	return t == TransferBulk || t == TransferStreaming
}

func (t TransferType) String() string {
	switch t {
	case TransferBulk:
		return "bulk"
	case TransferStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("TransferType(%d)", int(t))
	}
}

// ParseTransferType parses "bulk" or "streaming".
func ParseTransferType(s string) (TransferType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bulk":
		return TransferBulk, nil
	case "streaming":
		return TransferStreaming, nil
	}
	return 0, fmt.Errorf("%w: transfer type %q", ErrUnknownEnum, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t TransferType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: transfer type %d", ErrUnknownEnum, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TransferType) UnmarshalText(b []byte) error {
	parsed, err := ParseTransferType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
