package engine

import (
	"fmt"

	"go.uber.org/zap"

	ucodelayout "github.com/wippyai/ucode-layout"
	"github.com/wippyai/ucode-layout/errors"
	"github.com/wippyai/ucode-layout/host"
	"github.com/wippyai/ucode-layout/layout"
	"github.com/wippyai/ucode-layout/types"
)

// Engine applies the patch layout to a host.
type Engine struct {
	host host.Host
	reg  *Registry
}

// New creates an engine over h.
func New(h host.Host) *Engine {
	return &Engine{host: h, reg: NewRegistry(h)}
}

// Registry returns the engine's type registry.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// EnsureTypes registers the patch types if they are not registered yet.
func (e *Engine) EnsureTypes() (Registration, error) {
	res, err := e.reg.EnsureTypes()
	if err != nil {
		Logger().Error("type registration failed", zap.Error(err))
	}
	return res, err
}

// Apply defines the patch regions at base. It returns a report even on
// error; regions listed in it were applied before the failure.
//
// A short image is not an error: regions that do not fit are skipped or
// typed as far as whole records exist, and the report says which.
func (e *Engine) Apply(base uint64) (*Report, error) {
	rep := &Report{Base: base}

	if !layout.FitsAt(base) {
		err := errors.InvalidInput(errors.PhaseApply, fmt.Sprintf("base 0x%x overflows the address space", base))
		e.emit(rep, SeverityError, CodeInvalidBase, "", err.Error())
		return rep, err
	}

	reg, err := e.reg.EnsureTypes()
	if err != nil {
		e.emit(rep, SeverityError, CodeRegistration, "", err.Error())
		return rep, err
	}
	rep.Registered = reg.Built
	if reg.EnumFallback {
		rep.Diagnostics = append(rep.Diagnostics, Diagnostic{
			Severity: SeverityInfo,
			Code:     CodeEnumFallback,
			Message:  "opcode field registered as uint8",
		})
	}

	ts, err := e.reg.Lookup()
	if err != nil {
		e.emit(rep, SeverityError, CodeRegistration, "", err.Error())
		return rep, err
	}

	rep.Readable = e.probe(base)
	if rep.Readable < layout.PatchSize {
		e.emit(rep, SeverityWarning, CodeShortRead, "",
			fmt.Sprintf("only 0x%x bytes available from 0x%x, expected 0x%x; layout may be partial",
				rep.Readable, base, layout.PatchSize))
	}

	for _, region := range layout.Regions() {
		var err error
		switch region.ID {
		case layout.RegionPatch:
			err = e.applyContainer(rep, ts, region)
		case layout.RegionMicrocode:
			err = e.applyMicrocode(rep, ts, region)
		case layout.RegionHeader:
			err = e.applyFixed(rep, ts.Header, region)
		case layout.RegionRandom:
			err = e.applyFixed(rep, ts.Random, region)
		}
		if err != nil {
			return rep, err
		}
	}

	if err := e.host.UpdateAnalysis(); err != nil {
		e.emit(rep, SeverityInfo, CodeAnalysis, "", "analysis update not started: "+err.Error())
	}

	Logger().Info("applied AMD microcode layout",
		zap.String("base", fmt.Sprintf("0x%x", base)),
		zap.String("uops", fmt.Sprintf("0x%x", rep.Records())),
		zap.Int("regions", len(rep.Applied)))
	return rep, nil
}

// probe returns how many bytes of one patch are readable from base.
func (e *Engine) probe(base uint64) uint64 {
	data, err := e.host.Read(base, layout.PatchSize)
	if err != nil {
		debugf("probe read at 0x%x failed: %v", base, err)
		return min(ucodelayout.Available(e.host, base), layout.PatchSize)
	}
	return uint64(len(data))
}

func (e *Engine) applyContainer(rep *Report, ts Types, region layout.Region) error {
	addr := rep.Base + region.Offset
	if rep.Readable < layout.HeaderSize {
		e.skip(rep, region, fmt.Sprintf("0x%x bytes readable, container needs at least the 0x%x-byte header",
			rep.Readable, layout.HeaderSize))
		return nil
	}

	t, adHoc, err := e.reg.PatchType(ts, rep.Readable)
	if err != nil {
		e.emit(rep, SeverityError, CodeRegistration, region.ID.String(), err.Error())
		return err
	}
	if adHoc {
		e.emit(rep, SeverityInfo, CodeAdHocType, region.ID.String(),
			fmt.Sprintf("container typed as %s with 0x%x-byte body", layout.TypePatchAuto, rep.Readable-layout.HeaderSize))
	}
	return e.define(rep, region, addr, t, adHoc)
}

func (e *Engine) applyFixed(rep *Report, t *types.Type, region layout.Region) error {
	if rep.Readable < region.End() {
		e.skip(rep, region, fmt.Sprintf("needs 0x%x bytes at offset 0x%x, only 0x%x readable from base",
			region.Size, region.Offset, rep.Readable))
		return nil
	}
	return e.define(rep, region, rep.Base+region.Offset, t, false)
}

func (e *Engine) applyMicrocode(rep *Report, ts Types, region layout.Region) error {
	addr := rep.Base + region.Offset
	end := e.host.End()
	if addr >= end {
		rep.Skipped = append(rep.Skipped, region.ID)
		e.emit(rep, SeverityWarning, CodeOutOfRange, region.ID.String(),
			fmt.Sprintf("no bytes available for ucode region at 0x%x (image ends at 0x%x)", addr, end))
		return nil
	}

	sizing := SizeRegion(ucodelayout.Available(e.host, addr))
	rep.Sizing = &sizing
	if sizing.Empty() {
		rep.Skipped = append(rep.Skipped, region.ID)
		e.emit(rep, SeverityWarning, CodeNoWholeRecord, region.ID.String(),
			fmt.Sprintf("0x%x bytes at 0x%x hold no whole micro-op", sizing.Available, addr))
		return nil
	}

	t, adHoc, err := e.reg.RegionType(ts, sizing.Records)
	if err != nil {
		e.emit(rep, SeverityError, CodeRegistration, region.ID.String(), err.Error())
		return err
	}
	if adHoc {
		e.emit(rep, SeverityInfo, CodeAdHocType, region.ID.String(),
			fmt.Sprintf("ucode region typed as %s with 0x%x records", layout.TypeRegionAuto, sizing.Records))
	}
	return e.define(rep, region, addr, t, adHoc)
}

// define clears addr, then defines t there and attaches the region's symbol
// and comment. The host refuses to overwrite an occupied address.
func (e *Engine) define(rep *Report, region layout.Region, addr uint64, t *types.Type, adHoc bool) error {
	if err := e.host.UndefineDataVar(addr); err != nil {
		debugf("undefine at 0x%x: %v", addr, err)
	}
	if err := e.host.DefineDataVar(addr, t); err != nil {
		derr := errors.DefineFailed(region.ID.String(), addr, err)
		e.emit(rep, SeverityError, CodeDefine, region.ID.String(), derr.Error())
		return derr
	}
	if region.Symbol != "" {
		if err := e.host.DefineSymbol(addr, region.Symbol); err != nil {
			derr := errors.New(errors.PhaseApply, errors.KindHost).
				Region(region.ID.String()).
				Address(addr).
				Detail("define symbol %s", region.Symbol).
				Cause(err).
				Build()
			e.emit(rep, SeverityError, CodeDefine, region.ID.String(), derr.Error())
			return derr
		}
	}
	if region.Comment != "" {
		if err := e.host.SetComment(addr, region.Comment); err != nil {
			derr := errors.New(errors.PhaseApply, errors.KindHost).
				Region(region.ID.String()).
				Address(addr).
				Detail("set comment").
				Cause(err).
				Build()
			e.emit(rep, SeverityError, CodeDefine, region.ID.String(), derr.Error())
			return derr
		}
	}

	name := t.Name
	rep.Applied = append(rep.Applied, Applied{
		Region: region.ID,
		Addr:   addr,
		Type:   name,
		Symbol: region.Symbol,
		Size:   t.Size(),
		AdHoc:  adHoc,
	})
	Logger().Debug("region defined",
		zap.Stringer("region", region.ID),
		zap.String("addr", fmt.Sprintf("0x%x", addr)),
		zap.String("type", name),
		zap.Bool("ad_hoc", adHoc))
	return nil
}

func (e *Engine) skip(rep *Report, region layout.Region, msg string) {
	rep.Skipped = append(rep.Skipped, region.ID)
	e.emit(rep, SeverityWarning, CodeRegionTruncated, region.ID.String(), msg)
}

func (e *Engine) emit(rep *Report, sev Severity, code Code, region, msg string) {
	d := Diagnostic{Severity: sev, Code: code, Region: region, Message: msg}
	rep.Diagnostics = append(rep.Diagnostics, d)

	fields := []zap.Field{zap.String("code", string(code))}
	if region != "" {
		fields = append(fields, zap.String("region", region))
	}
	switch sev {
	case SeverityError:
		Logger().Error(msg, fields...)
	case SeverityWarning:
		Logger().Warn(msg, fields...)
	default:
		Logger().Info(msg, fields...)
	}
}

// ResolveType rebuilds a variable type from the name and size recorded in a
// session snapshot.
func (e *Engine) ResolveType(name string, size uint64) (*types.Type, error) {
	ts, err := e.reg.Lookup()
	if err != nil {
		return nil, err
	}
	switch name {
	case layout.TypeRegionAuto:
		if size == 0 || size%layout.MicroOpSize != 0 {
			return nil, errors.InvalidInput(errors.PhaseSession, fmt.Sprintf("region size 0x%x is not whole records", size))
		}
		t, _, err := e.reg.RegionType(ts, size/layout.MicroOpSize)
		return t, err
	case layout.TypePatchAuto:
		t, _, err := e.reg.PatchType(ts, size)
		return t, err
	}
	t, ok := e.host.LookupType(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseSession, "type", name)
	}
	return e.host.NamedType(name, t), nil
}
