// Package twitter posts reveal and death announcements to X/Twitter via
// gotwi. Each announcement tries to attach the token image through the
// chunked media upload API and degrades to a text-only post when the
// image cannot be downloaded or uploaded.
package twitter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/herowatch/herowatch/internal/deathwatch"
	"github.com/herowatch/herowatch/internal/pkg/logger"
	"github.com/herowatch/herowatch/internal/pkg/transport/http"
	"github.com/herowatch/herowatch/internal/revealwatch"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/media/upload"
	uploadtypes "github.com/michimani/gotwi/media/upload/types"
	"github.com/michimani/gotwi/tweet/managetweet"
	tweettypes "github.com/michimani/gotwi/tweet/managetweet/types"
)

// maxImageBytes bounds the image download; Twitter rejects images above
// 5MB anyway.
const maxImageBytes = 5 << 20

type notifier struct {
	client *gotwi.Client
	media  *retryablehttp.Client
}

var (
	_ revealwatch.RevealNotifier = (*notifier)(nil)
	_ deathwatch.DeathNotifier   = (*notifier)(nil)
)

// NewNotifier builds a notifier authenticated with OAuth1 user-context
// credentials.
func NewNotifier(apiKey, apiKeySecret, accessToken, accessTokenSecret string) (*notifier, error) {
	client, err := gotwi.NewClient(&gotwi.NewClientInput{
		AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
		OAuthToken:           accessToken,
		OAuthTokenSecret:     accessTokenSecret,
		APIKey:               apiKey,
		APIKeySecret:         apiKeySecret,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing twitter client: %w", err)
	}

	return &notifier{
		client: client,
		media:  http.NewClient(http.WithTimeout(10 * time.Second)),
	}, nil
}

func (n *notifier) AnnounceReveal(ctx context.Context, tokenID uint64, owner, image string) error {
	text := fmt.Sprintf("Hero #%d has been revealed and joined %s's roster!", tokenID, shortAddress(owner))
	return n.post(ctx, text, image)
}

func (n *notifier) AnnounceDeath(ctx context.Context, tokenID uint64, image string, level int) error {
	text := fmt.Sprintf("Hero #%d has fallen in battle.", tokenID)
	if level > 0 {
		text = fmt.Sprintf("%s It reached level %d. Rest well, hero.", text, level)
	}
	return n.post(ctx, text, image)
}

func (n *notifier) post(ctx context.Context, text, image string) error {
	input := &tweettypes.CreateInput{
		Text: gotwi.String(text),
	}

	if image != "" {
		mediaID, err := n.uploadImage(ctx, image)
		if err != nil {
			logger.Warn(ctx, "image attach failed, posting text only", "image", image, "error", err)
		} else {
			input.Media = &tweettypes.CreateInputMedia{
				MediaIDs: []string{mediaID},
			}
		}
	}

	if _, err := managetweet.Create(ctx, n.client, input); err != nil {
		return fmt.Errorf("posting announcement: %w", err)
	}
	return nil
}

// uploadImage downloads the token image and runs the chunked upload
// (initialize, append, finalize), returning the media ID to attach.
func (n *notifier) uploadImage(ctx context.Context, url string) (string, error) {
	data, err := n.downloadImage(ctx, url)
	if err != nil {
		return "", err
	}

	mediaType, mediaCategory := classifyImage(url)

	initOut, err := upload.Initialize(ctx, n.client, &uploadtypes.InitializeInput{
		MediaType:     mediaType,
		MediaCategory: mediaCategory,
		TotalBytes:    len(data),
	})
	if err != nil {
		return "", fmt.Errorf("initializing media upload: %w", err)
	}
	if initOut.Data.MediaID == "" {
		return "", fmt.Errorf("media upload initialize returned no media ID")
	}

	mediaID := initOut.Data.MediaID
	if _, err := upload.Append(ctx, n.client, &uploadtypes.AppendInput{
		MediaID:      mediaID,
		Media:        bytes.NewReader(data),
		SegmentIndex: 0,
	}); err != nil {
		return "", fmt.Errorf("appending media data: %w", err)
	}

	finalizeOut, err := upload.Finalize(ctx, n.client, &uploadtypes.FinalizeInput{
		MediaID: mediaID,
	})
	if err != nil {
		return "", fmt.Errorf("finalizing media upload: %w", err)
	}
	if finalizeOut.Data.MediaID == "" {
		return "", fmt.Errorf("media upload finalize returned no media ID")
	}

	return finalizeOut.Data.MediaID, nil
}

func (n *notifier) downloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building image request: %w", err)
	}

	resp, err := n.media.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	return data, nil
}

func classifyImage(url string) (uploadtypes.MediaType, uploadtypes.MediaCategory) {
	switch {
	case strings.HasSuffix(strings.ToLower(url), ".gif"):
		return uploadtypes.MediaTypeGIF, uploadtypes.MediaCategoryTweetGIF
	case strings.HasSuffix(strings.ToLower(url), ".jpg"), strings.HasSuffix(strings.ToLower(url), ".jpeg"):
		return uploadtypes.MediaTypeJPEG, uploadtypes.MediaCategoryTweetImage
	default:
		return uploadtypes.MediaTypePNG, uploadtypes.MediaCategoryTweetImage
	}
}

// shortAddress compresses a 0x address for display: 0x1234…abcd.
func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
