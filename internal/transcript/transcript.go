// Package transcript renders a channel's full history into a standalone
// HTML archive file.
package transcript

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

// Generator produces an archive file from a ticket channel.
type Generator interface {
	Generate(ctx context.Context, channel *platform.Channel) (*platform.File, error)
}

// HTMLGenerator renders the history with an HTML template, downloading and
// inlining referenced images so the archive is self-contained.
type HTMLGenerator struct {
	client platform.Client
	http   *http.Client
	logger *zap.Logger
}

// NewHTMLGenerator constructs the generator.
func NewHTMLGenerator(client platform.Client, logger *zap.Logger) *HTMLGenerator {
	return &HTMLGenerator{
		client: client,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type messageView struct {
	AuthorName string
	AuthorIcon string
	Timestamp  string
	Content    string
	Embeds     []embedView
	Images     []imageView
}

type embedView struct {
	Title       string
	Description string
	Color       string
}

type imageView struct {
	Source   string
	Filename string
}

// Generate fetches the entire channel history, oldest first, and renders
// it. There is no length cap; long tickets produce large files.
func (g *HTMLGenerator) Generate(ctx context.Context, channel *platform.Channel) (*platform.File, error) {
	msgs, err := g.client.ChannelMessages(ctx, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch channel history: %w", err)
	}

	views := make([]messageView, 0, len(msgs))
	for _, msg := range msgs {
		view := messageView{
			AuthorName: msg.AuthorName,
			AuthorIcon: msg.AuthorIcon,
			Timestamp:  msg.Timestamp.Format("2006-01-02 15:04:05"),
			Content:    msg.Content,
		}
		for _, emb := range msg.Embeds {
			view.Embeds = append(view.Embeds, embedView{
				Title:       emb.Title,
				Description: emb.Description,
				Color:       fmt.Sprintf("#%06x", emb.Color),
			})
		}
		for _, att := range msg.Attachments {
			if !isImage(att) {
				continue
			}
			view.Images = append(view.Images, imageView{
				Source:   g.inlineImage(ctx, att.URL),
				Filename: att.Filename,
			})
		}
		views = append(views, view)
	}

	html, err := renderTranscript(channel.Name, views)
	if err != nil {
		return nil, fmt.Errorf("render transcript: %w", err)
	}

	return &platform.File{
		Name:        fmt.Sprintf("transcript-%s.html", channel.Name),
		ContentType: "text/html",
		Data:        []byte(html),
	}, nil
}

// inlineImage downloads the image and returns a data URI. A failed fetch
// degrades to the original URL so the transcript still renders.
func (g *HTMLGenerator) inlineImage(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return url
	}
	resp, err := g.http.Do(req)
	if err != nil {
		g.logger.Debug("transcript image fetch failed", zap.String("url", url), zap.Error(err))
		return url
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return url
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return url
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func isImage(att platform.Attachment) bool {
	if att.Width > 0 || att.Height > 0 {
		return true
	}
	name := strings.ToLower(att.Filename)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
