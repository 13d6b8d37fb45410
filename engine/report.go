package engine

import (
	"fmt"

	"github.com/wippyai/ucode-layout/layout"
)

// Severity grades a diagnostic.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{
	SeverityInfo:    "info",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// Code identifies what a diagnostic is about.
type Code string

const (
	// CodeRegistration: a structural type could not be built. Fatal.
	CodeRegistration Code = "registration"
	// CodeEnumFallback: the opcode field is a plain u8.
	CodeEnumFallback Code = "enum_fallback"
	// CodeInvalidBase: base plus the patch size overflows the address space.
	CodeInvalidBase Code = "invalid_base"
	// CodeShortRead: fewer than PatchSize bytes are readable from base.
	CodeShortRead Code = "short_read"
	// CodeOutOfRange: the microcode region starts at or past the image end.
	CodeOutOfRange Code = "out_of_range"
	// CodeNoWholeRecord: the image ends fewer than MicroOpSize bytes into
	// the microcode region.
	CodeNoWholeRecord Code = "no_whole_record"
	// CodeRegionTruncated: a fixed-size region does not fit the image and
	// was skipped.
	CodeRegionTruncated Code = "region_truncated"
	// CodeAdHocType: a region was typed with a one-off, shortened type.
	CodeAdHocType Code = "ad_hoc_type"
	// CodeDefine: the host refused a definition.
	CodeDefine Code = "define"
	// CodeAnalysis: the host could not start re-analysis.
	CodeAnalysis Code = "analysis"
)

// Diagnostic is one message produced while applying a layout.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Region   string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Region != "" {
		return fmt.Sprintf("%s %s [%s]: %s", d.Severity, d.Code, d.Region, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}

// Applied records one region that was defined.
type Applied struct {
	Type   string
	Symbol string
	Region layout.RegionID
	Addr   uint64
	Size   uint64
	AdHoc  bool
}

func (a Applied) String() string {
	kind := "registered"
	if a.AdHoc {
		kind = "ad hoc"
	}
	return fmt.Sprintf("%-14s 0x%x size 0x%x %s (%s)", a.Region, a.Addr, a.Size, a.Type, kind)
}

// Report describes the outcome of one Apply call.
type Report struct {
	Sizing      *Sizing
	Applied     []Applied
	Skipped     []layout.RegionID
	Diagnostics []Diagnostic
	Base        uint64
	Readable    uint64
	// Registered is set when this call built the types.
	Registered bool
}

// Count returns how many diagnostics have the given severity.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Has reports whether any diagnostic carries code.
func (r *Report) Has(code Code) bool {
	for _, d := range r.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Region returns the applied record for id.
func (r *Report) Region(id layout.RegionID) (Applied, bool) {
	for _, a := range r.Applied {
		if a.Region == id {
			return a, true
		}
	}
	return Applied{}, false
}

// Records returns the number of micro-op records typed, or zero.
func (r *Report) Records() uint64 {
	if r.Sizing == nil {
		return 0
	}
	return r.Sizing.Records
}
