// Package s3 provides an S3 implementation of the storage.Storage interface.
//
// # Usage
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	st := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "sketches/")
//	idx := linear.New(func(o *linear.Options) { o.Storage = st })
//
// # Features
//
//   - Multipart uploads for large signature collections
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
