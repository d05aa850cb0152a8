// github.com/kse2/pwsafe - a library for reading and writing Password Safe files
// Copyright (C) 2026  pwsafe contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package adapter

import (
	"bytes"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Adapter implements ResourceAdapter over a single S3 bucket, for
// the "URL readers" back end spec.md names as an out-of-core-scope
// external collaborator that the ResourceAdapter interface still
// accommodates.
type S3Adapter struct {
	bucket     string
	client     *s3.S3
	downloader *s3manager.Downloader
	uploader   *s3manager.Uploader
}

// NewS3Adapter returns a ResourceAdapter backed by bucket in region.
func NewS3Adapter(bucket, region string) *S3Adapter {
	sess := session.Must(session.NewSession(aws.NewConfig().WithRegion(region)))
	client := s3.New(sess)
	return &S3Adapter{
		bucket:     bucket,
		client:     client,
		downloader: s3manager.NewDownloaderWithClient(client),
		uploader:   s3manager.NewUploaderWithClient(client),
	}
}

type s3ByteSource struct {
	*bytes.Reader
}

func (s3ByteSource) Close() error { return nil }

func (a *S3Adapter) OpenRead(path string) (ByteSource, error) {
	buf := aws.NewWriteAtBuffer(nil)
	_, err := a.downloader.Download(buf, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, err
	}
	return s3ByteSource{bytes.NewReader(buf.Bytes())}, nil
}

type s3ByteSink struct {
	buf    *bytes.Buffer
	adapt  *S3Adapter
	key    string
}

func (s *s3ByteSink) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (s *s3ByteSink) Close() error {
	_, err := s.adapt.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.adapt.bucket),
		Key:    aws.String(s.key),
		Body:   bytes.NewReader(s.buf.Bytes()),
	})
	return err
}

func (a *S3Adapter) OpenWrite(path string) (ByteSink, error) {
	return &s3ByteSink{buf: &bytes.Buffer{}, adapt: a, key: path}, nil
}

func (a *S3Adapter) Exists(path string) bool {
	_, err := a.client.HeadObject(&s3.HeadObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(path)})
	return err == nil
}

func (a *S3Adapter) Delete(path string) bool {
	_, err := a.client.DeleteObject(&s3.DeleteObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(path)})
	return err == nil
}

func (a *S3Adapter) Rename(from, to string) bool {
	_, err := a.client.CopyObject(&s3.CopyObjectInput{
		Bucket:     aws.String(a.bucket),
		CopySource: aws.String(a.bucket + "/" + from),
		Key:        aws.String(to),
	})
	if err != nil {
		return false
	}
	return a.Delete(from)
}

func (a *S3Adapter) Length(path string) int64 {
	out, err := a.client.HeadObject(&s3.HeadObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(path)})
	if err != nil || out.ContentLength == nil {
		return -1
	}
	return *out.ContentLength
}

func (a *S3Adapter) Modified(path string) int64 {
	out, err := a.client.HeadObject(&s3.HeadObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(path)})
	if err != nil || out.LastModified == nil {
		return 0
	}
	return out.LastModified.Unix()
}

func (a *S3Adapter) CanWrite(path string) bool { return true }
func (a *S3Adapter) CanDelete(path string) bool { return true }
func (a *S3Adapter) Separator() rune { return '/' }

func (a *S3Adapter) URL(path string) string {
	return "s3://" + a.bucket + "/" + path
}
