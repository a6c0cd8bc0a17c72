// Package logger builds slog loggers for the service and provides attribute
// helpers shared by every component.
//
// A logger is assembled from options. ForEnv picks the preset for the
// APP_ENV value: text at debug level for development, JSON at info level for
// staging and production.
//
//	log := logger.New(logger.ForEnv(cfg.AppEnv, cfg.AppName))
//	logger.SetAsDefault(log)
//
// Values stored in a request context can be copied into every record logged
// with that context:
//
//	log := logger.New(
//		logger.WithProduction("storyforge"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "story created")
//
// Attribute helpers return an empty slog.Attr for zero inputs, so optional
// values can be passed without checks:
//
//	log.Error("command failed",
//		logger.Component("dispatcher"),
//		logger.RunID(runID),
//		logger.ThreadScope(scope),
//		logger.RetryCount(retries),
//		logger.Error(err),
//	)
package logger
