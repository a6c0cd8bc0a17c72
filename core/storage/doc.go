// Package storage stores generated artifacts (narration audio and similar
// blobs) behind a small key/value interface.
//
// Two backends implement Storage: Local, which writes under a root directory,
// and the S3 backend in integration/storage/s3.
//
//	store, err := storage.NewLocal("./data/audio",
//	    storage.WithBaseURL("/media"),
//	)
//
//	obj, err := store.Put(ctx, "audio/42.mp3", bytes.NewReader(mp3), "audio/mpeg")
//	// obj.URL == "/media/audio/42.mp3"
//
// Keys are slash separated, relative and must not contain "..".
package storage
