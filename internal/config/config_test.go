package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAdminEmails_MixedSeparators(t *testing.T) {
	got := ParseAdminEmails("A@x.com, b@y.com;c@z.com  d@w.com")
	assert.Equal(t, []string{"a@x.com", "b@y.com", "c@z.com", "d@w.com"}, got)
}

func TestParseAdminEmails_Empty(t *testing.T) {
	assert.Empty(t, ParseAdminEmails(""))
	assert.Empty(t, ParseAdminEmails(" ,; "))
}

func TestDefaultBlobPublicURL_LocalEndpoint(t *testing.T) {
	c := &Config{AWSEndpointURL: "http://localhost:4566/", BlobBucket: "b"}
	assert.Equal(t, "http://localhost:4566/b", defaultBlobPublicURL(c))
}

func TestDefaultBlobPublicURL_S3(t *testing.T) {
	c := &Config{BlobBucket: "b", AWSRegion: "eu-west-1"}
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", defaultBlobPublicURL(c))
}
