// Package s3 implements storage.Storage on Amazon S3 and S3-compatible
// services (MinIO, DigitalOcean Spaces, Wasabi).
//
//	store, err := s3.New(ctx, s3.Config{
//	    Bucket:    "storyforge-audio",
//	    Region:    "us-east-1",
//	    KeyPrefix: "prod",
//	})
//
//	obj, err := store.Put(ctx, "audio/42.mp3", bytes.NewReader(mp3), "audio/mpeg")
//
// MinIO needs an endpoint and path-style addressing:
//
//	cfg := s3.Config{
//	    Bucket:         "audio",
//	    Region:         "us-east-1",
//	    AccessKeyID:    "minioadmin",
//	    SecretKey:      "minioadmin",
//	    Endpoint:       "http://localhost:9000",
//	    ForcePathStyle: true,
//	}
//
// SDK errors are mapped to the storage package sentinels, so callers can use
// storage.IsTransient to decide whether an upload should be retried.
package s3
