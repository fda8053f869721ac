package helperstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Options carries what a location string cannot: S3 credentials and the
// sealing passphrase.
type Options struct {
	S3         S3Config
	Passphrase string
}

// Open builds a store from a location:
//
//	memory                 in-process only
//	sqlite:<path>          local database file
//	s3://<bucket>/<prefix> S3-compatible object storage
//
// A non-empty passphrase wraps the result in Sealed.
func Open(ctx context.Context, location string, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)

	switch {
	case location == "" || location == "memory":
		s = NewMemory()
	case strings.HasPrefix(location, "sqlite:"):
		p := strings.TrimPrefix(location, "sqlite:")
		if p == "" {
			return nil, fmt.Errorf("helper store location %q: empty sqlite path", location)
		}
		s, err = OpenSQLite(ctx, p)
	case strings.HasPrefix(location, "s3://"):
		u, perr := url.Parse(location)
		if perr != nil || u.Host == "" {
			return nil, fmt.Errorf("helper store location %q: want s3://bucket/prefix", location)
		}
		c := opts.S3
		c.Bucket = u.Host
		c.Prefix = strings.Trim(u.Path, "/")
		s, err = NewS3(ctx, c)
	default:
		return nil, fmt.Errorf("helper store location %q: unknown scheme", location)
	}
	if err != nil {
		return nil, err
	}

	if opts.Passphrase != "" {
		return NewSealed(s, opts.Passphrase), nil
	}
	return s, nil
}
