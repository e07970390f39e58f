package resources

import (
	"fmt"
	"strings"

	kerr "github.com/keti-strato/pms/pkg/domain/errors"
	xe "github.com/keti-strato/pms/pkg/errors"
	"github.com/shopspring/decimal"
	"k8s.io/apimachinery/pkg/api/resource"
)

var gigaInMega = decimal.NewFromInt(1000)

// FormatCPU writes cores, rounded to 2 decimal places.
func FormatCPU(cores decimal.Decimal) string {
	return cores.Round(2).String()
}

// FormatMemory writes MiB with "Mi" suffix, rounded to 2 decimal places.
func FormatMemory(mi decimal.Decimal) string {
	return mi.Round(2).String() + "Mi"
}

// ParseMemory reads a memory quantity as a number of "Mi".
//
// "G" and "Gi" are taken as 1000 Mi. "M", "Mi" and bare numbers are taken as Mi.
// Other units are errors.
func ParseMemory(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if _, err := resource.ParseQuantity(s); err != nil {
		return decimal.Zero, xe.Wrap(fmt.Errorf("%w: memory %q: %w", kerr.ErrDocumentFormat, s, err))
	}

	number, scale := s, decimal.NewFromInt(1)
	switch {
	case strings.HasSuffix(s, "Gi"):
		number, scale = strings.TrimSuffix(s, "Gi"), gigaInMega
	case strings.HasSuffix(s, "G"):
		number, scale = strings.TrimSuffix(s, "G"), gigaInMega
	case strings.HasSuffix(s, "Mi"):
		number = strings.TrimSuffix(s, "Mi")
	case strings.HasSuffix(s, "M"):
		number = strings.TrimSuffix(s, "M")
	}

	d, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.Zero, xe.Wrap(fmt.Errorf("%w: memory %q: unsupported unit", kerr.ErrDocumentFormat, s))
	}
	return d.Mul(scale), nil
}

// NormalizeMemory rewrites a memory quantity in "Mi". For example, "2G" is "2000Mi".
func NormalizeMemory(s string) (string, error) {
	mi, err := ParseMemory(s)
	if err != nil {
		return "", err
	}
	return FormatMemory(mi), nil
}

// ParseCPU reads a cpu quantity as a number of cores. "500m" is 0.5.
func ParseCPU(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	q, err := resource.ParseQuantity(s)
	if err != nil {
		return decimal.Zero, xe.Wrap(fmt.Errorf("%w: cpu %q: %w", kerr.ErrDocumentFormat, s, err))
	}
	return decimal.New(q.MilliValue(), -3), nil
}
