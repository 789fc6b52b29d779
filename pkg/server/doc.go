// Package server serves reflow trees to browsers.
//
// Each page request mounts the root component at the request URI, renders
// the resulting tree into an HTML page, and registers the new session as
// pending. The page loads a small client script which connects back over
// a WebSocket at /ws/{session}, claiming the session:
//
//	GET /some/path        -> HTML page, session pending
//	GET /_reflow.js       -> client script
//	GET /ws/{session}     -> WebSocket, session live
//
// Over the socket the client sends events as JSON arrays:
//
//	["click", 0, 2, {}]
//	["input", 1, {"value": "abc"}]
//	["popstate", {"url": "/about"}]
//
// and the server answers each update pass with the ops that bring the
// client's DOM from the previous tree to the new one, followed by any
// history actions queued by handlers:
//
//	[["set", 0, 2, "class", "active"], ["push_url", "/about"]]
//
// Event paths are child indexes from the mount element, matching the tree
// the server last sent. An event aimed at a node that has since gone is
// dropped. Pending sessions that are never claimed expire after
// SessionConfig.HandshakeTimeout.
//
// # Usage
//
//	srv := server.New(app.Root(), &server.ServerConfig{
//	    Address:  ":8080",
//	    Registry: prometheus.NewRegistry(),
//	})
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Link renders anchors that navigate through the session instead of
// reloading the page.
package server
