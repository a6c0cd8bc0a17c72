// Package server wraps http.Server with graceful shutdown, env-driven
// configuration and an errgroup-friendly Run.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	return g.Wait()
//
// The write timeout defaults to zero because the API serves a websocket
// stream; set SERVER_WRITE_TIMEOUT when the server only handles short
// requests.
//
// TLS is enabled when both SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE are
// set, or with WithTLS.
package server
