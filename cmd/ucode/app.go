package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	ucodelayout "github.com/wippyai/ucode-layout"
	"github.com/wippyai/ucode-layout/engine"
	"github.com/wippyai/ucode-layout/errors"
	"github.com/wippyai/ucode-layout/host/memhost"
	"github.com/wippyai/ucode-layout/image"
	"github.com/wippyai/ucode-layout/internal/config"
	"github.com/wippyai/ucode-layout/types"
)

// app is the state shared by every subcommand.
type app struct {
	cfg    config.Config
	log    *zap.Logger
	img    ucodelayout.Image
	db     *memhost.DB
	eng    *engine.Engine
	module *image.WasmModule
	// inWasm copies the image file into a wazero linear memory.
	inWasm bool
}

// open loads the image and session. needImage makes a missing image an
// error; otherwise an empty image stands in.
func (a *app) open(ctx context.Context, needImage bool) error {
	img, err := a.loadImage(ctx)
	if err != nil {
		return err
	}
	if img == nil {
		if needImage {
			return fmt.Errorf("no image given; use --image, --wasm or the config file")
		}
		img = image.NewBytes(nil)
	}
	a.img = img

	a.db = memhost.New(img, hostOptions(a.cfg.Host))
	a.eng = engine.New(a.db)
	return a.restore()
}

func (a *app) loadImage(ctx context.Context) (ucodelayout.Image, error) {
	switch {
	case a.cfg.Wasm != "":
		data, err := os.ReadFile(a.cfg.Wasm)
		if err != nil {
			return nil, fmt.Errorf("read wasm module: %w", err)
		}
		mod, err := image.LoadWasm(ctx, data)
		if err != nil {
			return nil, err
		}
		a.module = mod
		a.log.Debug("image is wasm linear memory",
			zap.String("module", a.cfg.Wasm),
			zap.Uint64("size", mod.Memory().End()))
		return mod.Memory(), nil

	case a.cfg.Image != "" && a.inWasm:
		data, err := os.ReadFile(a.cfg.Image)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		mod, err := image.NewWasmImage(ctx, data)
		if err != nil {
			return nil, err
		}
		a.module = mod
		return mod.Memory().Limit(uint64(len(data))), nil

	case a.cfg.Image != "":
		return image.Open(a.cfg.Image)
	}
	return nil, nil
}

// restore replays the session file, if one exists.
func (a *app) restore() error {
	if a.cfg.Session == "" {
		return nil
	}
	data, err := os.ReadFile(a.cfg.Session)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if _, err := a.eng.EnsureTypes(); err != nil {
		return err
	}
	if err := a.db.Restore(bytes.NewReader(data), a.eng.ResolveType); err != nil {
		return err
	}
	a.log.Debug("session restored",
		zap.String("path", a.cfg.Session),
		zap.Int("vars", len(a.db.Vars())))
	return nil
}

// save writes the session file, if one is configured.
func (a *app) save() error {
	if a.cfg.Session == "" || a.db == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := a.db.Save(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(a.cfg.Session, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (a *app) close(ctx context.Context) {
	if a.module != nil {
		if err := a.module.Close(ctx); err != nil {
			a.log.Debug("close wasm module", zap.Error(err))
		}
	}
}

// hostOptions maps the configured capabilities onto the reference host.
func hostOptions(h config.Host) memhost.Options {
	opts := memhost.Options{DisableEnums: !h.EnumSupport}
	for _, shape := range h.IntShapes {
		switch shape {
		case config.ShapeWidth:
			opts.IntShapes = append(opts.IntShapes, types.UInt)
		case config.ShapeBroken:
			opts.IntShapes = append(opts.IntShapes, brokenIntShape)
		}
	}
	return opts
}

func brokenIntShape(width uint64) (*types.Type, error) {
	return nil, errors.Unsupported(errors.PhaseRegister, fmt.Sprintf("int(%d): unexpected argument shape", width))
}
