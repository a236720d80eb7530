package listing

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Config parameterises a connection to an AWS S3 bucket acting as the
// central project storage, per spec.md §4.4/§6. Grounded on the teacher's
// direct dependency on github.com/aws/aws-sdk-go (its cluster/ and ais/
// packages use the same SDK against S3-compatible backends).
type S3Config struct {
	Bucket string
	Region string
	Prefix string // key prefix the project root lives under, may be ""
}

// S3 implements listing.Backend over an S3 bucket, emulating folders via
// the "/" delimiter the way aws-sdk-go's ListObjectsV2 supports natively.
type S3 struct {
	cfg    S3Config
	client *s3.S3
}

func NewS3(cfg S3Config) (*S3, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Region)})
	if err != nil {
		return nil, BackendErr("creating aws session: " + err.Error())
	}
	return &S3{cfg: cfg, client: s3.New(sess)}, nil
}

func (b *S3) key(dir string) string {
	dir = strings.Trim(dir, "/")
	full := strings.Trim(b.cfg.Prefix, "/")
	if dir != "" {
		if full != "" {
			full += "/"
		}
		full += dir
	}
	if full != "" {
		full += "/"
	}
	return full
}

func (b *S3) List(ctx context.Context, dir string) (folders, files []string, err error) {
	prefix := b.key(dir)
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.cfg.Bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}

	err = b.client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.StringValue(cp.Prefix), prefix), "/")
			if name != "" {
				folders = append(folders, name)
			}
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.StringValue(obj.Key), prefix)
			if name != "" && !strings.Contains(name, "/") {
				files = append(files, name)
			}
		}
		return true
	})
	if err != nil {
		return nil, nil, NetworkError("listing s3://" + b.cfg.Bucket + "/" + prefix + ": " + err.Error())
	}
	if len(folders) == 0 && len(files) == 0 {
		exists, _ := b.Exists(ctx, dir)
		if !exists {
			return nil, nil, NotFound(dir)
		}
	}
	return sortedUnique(folders), sortedUnique(files), nil
}

func (b *S3) Exists(ctx context.Context, path string) (bool, error) {
	key := b.key(path)
	_, err := b.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(strings.TrimSuffix(key, "/")),
	})
	if err == nil {
		return true, nil
	}

	out, listErr := b.client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.cfg.Bucket),
		Prefix:  aws.String(key),
		MaxKeys: aws.Int64(1),
	})
	if listErr != nil {
		return false, BackendErr(listErr.Error())
	}
	return len(out.Contents) > 0, nil
}

func (b *S3) Delete(ctx context.Context, path string) error {
	key := strings.TrimSuffix(b.key(path), "/")
	_, err := b.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return BackendErr("deleting s3://" + b.cfg.Bucket + "/" + key + ": " + err.Error())
	}
	return nil
}
