package b2

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type authorizeResponse struct {
	AccountID          string `json:"accountId"`
	AuthorizationToken string `json:"authorizationToken"`
	APIURL             string `json:"apiUrl"`
	DownloadURL        string `json:"downloadUrl"`
	Allowed            struct {
		BucketID   string `json:"bucketId"`
		BucketName string `json:"bucketName"`
	} `json:"allowed"`
}

type listBucketsRequest struct {
	AccountID  string `json:"accountId"`
	BucketName string `json:"bucketName"`
}

type listBucketsResponse struct {
	Buckets []struct {
		BucketID   string `json:"bucketId"`
		BucketName string `json:"bucketName"`
	} `json:"buckets"`
}

type getUploadURLRequest struct {
	BucketID string `json:"bucketId"`
}

type uploadTarget struct {
	UploadURL          string `json:"uploadUrl"`
	AuthorizationToken string `json:"authorizationToken"`
}

func (s *Storage) authorize(ctx context.Context) (*session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.APIURL+"/b2api/v2/b2_authorize_account", nil)
	if err != nil {
		return nil, fmt.Errorf("create authorize request: %w", err)
	}
	req.SetBasicAuth(s.cfg.KeyID, s.cfg.AppKey)

	var auth authorizeResponse
	if err := s.do(req, &auth, "authorize_account"); err != nil {
		return nil, err
	}

	sess := &session{
		accountID:   auth.AccountID,
		apiURL:      strings.TrimRight(auth.APIURL, "/"),
		downloadURL: strings.TrimRight(auth.DownloadURL, "/"),
		authToken:   auth.AuthorizationToken,
	}

	// Keys restricted to one bucket carry its id; otherwise look it up by name.
	if auth.Allowed.BucketID != "" && auth.Allowed.BucketName == s.cfg.Bucket {
		sess.bucketID = auth.Allowed.BucketID
		return sess, nil
	}

	var buckets listBucketsResponse
	err = s.postJSON(ctx, sess.apiURL+"/b2api/v2/b2_list_buckets", sess.authToken, listBucketsRequest{
		AccountID:  sess.accountID,
		BucketName: s.cfg.Bucket,
	}, &buckets, "list_buckets")
	if err != nil {
		return nil, err
	}
	for _, b := range buckets.Buckets {
		if b.BucketName == s.cfg.Bucket {
			sess.bucketID = b.BucketID
			return sess, nil
		}
	}
	return nil, fmt.Errorf("b2 bucket %q not found", s.cfg.Bucket)
}

func (s *Storage) getUploadURL(ctx context.Context, sess *session) (*uploadTarget, error) {
	var target uploadTarget
	err := s.postJSON(ctx, sess.apiURL+"/b2api/v2/b2_get_upload_url", sess.authToken, getUploadURLRequest{
		BucketID: sess.bucketID,
	}, &target, "get_upload_url")
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (s *Storage) uploadFile(ctx context.Context, target *uploadTarget, name string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.UploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	sum := sha1.Sum(data)
	req.Header.Set("Authorization", target.AuthorizationToken)
	req.Header.Set("X-Bz-File-Name", escapeFileName(name))
	req.Header.Set("Content-Type", "b2/x-auto")
	req.Header.Set("X-Bz-Content-Sha1", hex.EncodeToString(sum[:]))

	var out map[string]any
	return s.do(req, &out, "upload_file")
}

func (s *Storage) postJSON(ctx context.Context, endpoint, token string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out, operation)
}

func (s *Storage) do(req *http.Request, out any, operation string) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("b2 %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
