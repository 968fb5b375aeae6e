// Package bucketdeploy materializes the contents of a zip package stored
// in S3 into individual objects in a destination bucket, and reconciles
// that object set across Create/Update/Delete lifecycle events of a
// CloudFormation custom resource.
//
// The module wraps AWS SDK v2 and keeps a manifest object per
// (destination bucket, source key) pair recording which destination
// objects it wrote, keyed by a content fingerprint. On Update the
// previous manifest drives an incremental diff: unchanged entries are
// skipped, changed or new entries are re-uploaded, and objects no longer
// present in the package are batch-deleted. On Delete the manifest alone
// is enough to remove everything this module created.
//
// Example usage:
//
//	client, err := bucketdeploy.New(
//	    bucketdeploy.WithRegion("us-west-2"),
//	    bucketdeploy.WithManifestBucket("deploy-manifests"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.Create(ctx, deploytypes.PackageRequest{
//	    SourceBucket:      "artifacts",
//	    SourceKey:         "site-v42.zip",
//	    DestinationBucket: "www",
//	    DestinationKey:    "site",
//	    Encoding:          "GZIP",
//	})
//	if err != nil {
//	    return err
//	}
package bucketdeploy
