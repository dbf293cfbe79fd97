// Package logger builds the *slog.Logger instances used across notifykit and
// keeps attribute keys consistent between components.
//
// New creates a logger from functional options. The handler is either
// slog.NewJSONHandler (default) or slog.NewTextHandler, optionally carrying
// static attributes, and is wrapped by a decorator that copies values from
// context.Context into every record.
//
//	log := logger.New(
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithFormat(logger.Format(cfg.LogFormat)),
//	    logger.WithComponent("notifydemo"),
//	)
//	log.LogAttrs(ctx, slog.LevelInfo, "entry arrived",
//	    logger.EntryID(e.ID()),
//	    logger.Target(t.String()),
//	)
//
// Attribute helpers such as Error and Errors return an empty slog.Attr for
// nil input, so call sites never need a nil check before logging.
package logger
