// Package minio provides a MinIO (and S3-compatible) implementation of
// storage.Storage.
//
//	client, _ := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(access, secret, ""),
//	})
//	st := sketchminio.NewStore(client, "sketches", "db1/")
package minio
