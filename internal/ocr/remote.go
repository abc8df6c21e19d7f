package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/resilience"
	"github.com/GriffinCanCode/autoquiz/internal/trace"
)

// Remote delegates recognition to an OCR sidecar over gRPC
type Remote struct {
	conn      *grpc.ClientConn
	breaker   *resilience.Breaker
	languages []string
}

// Dial connects to the sidecar at addr. The connection is lazy; the first
// Recognize call establishes it. A nil breaker gets the OCR preset.
func Dial(addr string, languages []string, breaker *resilience.Breaker, opts ...grpc.DialOption) (*Remote, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(trace.UnaryClientInterceptor()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:    DefaultKeepaliveTime,
			Timeout: DefaultKeepaliveTimeout,
		}),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ConfigInvalid, "dial ocr sidecar").WithMetadata("addr", addr)
	}
	if breaker == nil {
		breaker = resilience.New("ocr", resilience.OCRConfig())
	}
	slog.Info("ocr sidecar configured", "addr", addr, "languages", languages)
	return &Remote{
		conn:      conn,
		breaker:   breaker,
		languages: languages,
	}, nil
}

// Close closes the gRPC connection
func (r *Remote) Close() error {
	return r.conn.Close()
}

// Recognize sends img to the sidecar and returns its runs.
func (r *Remote) Recognize(ctx context.Context, img image.Image, opts Options) ([]Run, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	req, err := r.request(data, opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultCallTimeout)
	defer cancel()

	resp, err := resilience.Call(r.breaker, func() (*structpb.Struct, error) {
		var out structpb.Struct
		if err := r.conn.Invoke(ctx, ReadTextMethod, req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if errors.Is(err, resilience.ErrOpen) {
		return nil, apperrors.Wrap(err, apperrors.OCRFailed, "ocr sidecar unavailable")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.FromGRPCError(err), apperrors.OCRFailed, "read text")
	}
	return parseRuns(resp, opts.MinSize)
}

func (r *Remote) request(data []byte, opts Options) (*structpb.Struct, error) {
	languages := r.languages
	if len(opts.Languages) > 0 {
		languages = opts.Languages
	}
	langs := make([]any, len(languages))
	for i, l := range languages {
		langs[i] = l
	}
	req, err := structpb.NewStruct(map[string]any{
		"image_png": base64.StdEncoding.EncodeToString(data),
		"languages": langs,
		"min_size":  opts.MinSize,
		"paragraph": opts.Paragraph,
		"decoder":   opts.Decoder,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "build ocr request")
	}
	return req, nil
}

// parseRuns decodes {"runs": [{"box": [[x,y]...], "text": s, "confidence": f}]}.
func parseRuns(resp *structpb.Struct, minSize int) ([]Run, error) {
	list := resp.GetFields()["runs"].GetListValue()
	if list == nil {
		return nil, nil
	}
	runs := make([]Run, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			return nil, apperrors.Newf(apperrors.OCRFailed, "run %d is not an object", i)
		}
		poly, err := parsePolygon(fields["box"].GetListValue())
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.OCRFailed, "run %d", i)
		}
		text := fields["text"].GetStringValue()
		if text == "" || TooSmall(bounds(poly), minSize) {
			continue
		}
		runs = append(runs, Run{
			Polygon:    poly,
			Text:       text,
			Confidence: fields["confidence"].GetNumberValue(),
		})
	}
	return runs, nil
}

func parsePolygon(list *structpb.ListValue) ([]image.Point, error) {
	if list == nil || len(list.GetValues()) == 0 {
		return nil, apperrors.New(apperrors.OCRFailed, "missing box")
	}
	poly := make([]image.Point, 0, len(list.GetValues()))
	for _, pv := range list.GetValues() {
		xy := pv.GetListValue().GetValues()
		if len(xy) != 2 {
			return nil, apperrors.New(apperrors.OCRFailed, "box point must be [x, y]")
		}
		poly = append(poly, image.Point{
			X: int(xy[0].GetNumberValue()),
			Y: int(xy[1].GetNumberValue()),
		})
	}
	return poly, nil
}

func bounds(poly []image.Point) image.Rectangle {
	if len(poly) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: poly[0], Max: poly[0]}
	for _, p := range poly[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}
