package app

import (
	"context"

	"github.com/quantmind-br/offsync/internal/manifest"
	"github.com/quantmind-br/offsync/internal/output"
	"github.com/quantmind-br/offsync/internal/server"
	"golang.org/x/sync/errgroup"
)

// Watch runs the connectivity monitor and, when configured, the flag-file
// watcher until ctx is done, switching modes as connectivity changes
func (a *App) Watch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.monitor.Run(gctx, a.controller)
	})
	if a.flag != nil {
		g.Go(func() error {
			return a.flag.Run(gctx, a.controller)
		})
	}

	a.logger.Info().
		Bool("flag_file", a.flag != nil).
		Dur("interval", a.config.Connectivity.ProbeInterval).
		Msg("Watching connectivity")
	return g.Wait()
}

// ServeOptions contains options for Serve
type ServeOptions struct {
	Address     string
	Definitions string
	BaseURL     string
	// Watch also runs the connectivity watchers
	Watch bool
}

// Serve publishes the manifest definitions and the local captures over
// HTTP until ctx is done
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	if opts.Address == "" {
		opts.Address = a.config.Server.Address
	}
	if opts.Definitions == "" {
		opts.Definitions = a.config.Server.Definitions
	}

	defs, err := manifest.NewLoader().Load(opts.Definitions)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Definitions: defs,
		Reader:      a.backend,
		BaseURL:     opts.BaseURL,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, opts.Address)
	})
	if opts.Watch {
		g.Go(func() error {
			return a.Watch(gctx)
		})
	}
	return g.Wait()
}

// Export writes the captured resources to disk
func (a *App) Export(ctx context.Context, opts output.ExporterOptions) (*output.Result, error) {
	if opts.Logger == nil {
		opts.Logger = a.logger
	}
	if opts.SiteURL == "" {
		opts.SiteURL = a.config.Site.RootURL
	}
	return output.NewExporter(opts).Export(ctx, a.captures)
}
