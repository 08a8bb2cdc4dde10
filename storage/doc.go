// Package storage is the object storage abstraction annotations are written
// through. Backends register themselves by provider name:
//
//   - storage/local: a directory on the local filesystem
//   - storage/s3: Amazon S3 or an S3-compatible service
//
// Import the backend packages for their side effects and select one in
// configuration:
//
//	storage:
//	  provider: "s3"
//	  s3:
//	    bucket: "whisperdesk-annotations"
//	    region: "us-east-1"
package storage
