package translate

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

// Google queries the public Google Translate endpoint used by browser
// extensions (client=gtx).
type Google struct {
	client   *http.Client
	endpoint string
}

// NewGoogle creates a Google backend; empty endpoint uses the public one.
func NewGoogle(client *http.Client, endpoint string) *Google {
	if client == nil {
		client = &http.Client{}
	}
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	return &Google{client: client, endpoint: endpoint}
}

// Translate fetches the zh-CN translation of word.
func (g *Google) Translate(ctx context.Context, word string) (string, error) {
	q := url.Values{
		"client": {"gtx"},
		"sl":     {SourceLanguage},
		"tl":     {TargetLanguage},
		"dt":     {"t"},
		"q":      {word},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.InvalidArgument, "build translate request")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", apperrors.Wrap(err, apperrors.Timeout, "translate request")
		}
		return "", apperrors.Wrap(err, apperrors.Unavailable, "translate request")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return "", err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Unavailable, "read translate response")
	}
	return parseGoogle(body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests:
		return apperrors.New(apperrors.RateLimited, "translate endpoint throttled")
	case code >= 500:
		return apperrors.Newf(apperrors.Unavailable, "translate endpoint status %d", code)
	default:
		return apperrors.Newf(apperrors.TranslateFailed, "translate endpoint status %d", code)
	}
}

// parseGoogle joins the translated segments of a gtx response:
// [[["如果","if",null,null,10]],null,"en",...]
func parseGoogle(body []byte) (string, error) {
	var payload []any
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslateFailed, "decode translate response")
	}
	if len(payload) == 0 {
		return "", apperrors.New(apperrors.TranslateFailed, "empty translate response")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", apperrors.Newf(apperrors.TranslateFailed, "unexpected segments type %T", payload[0])
	}
	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}
