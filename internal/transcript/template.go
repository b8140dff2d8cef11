package transcript

import "github.com/flosch/pongo2/v6"

var transcriptTemplate = pongo2.Must(pongo2.FromString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Transcript {{ channel_name }}</title>
<style>
  body { background: #313338; color: #dbdee1; font-family: "Segoe UI", sans-serif; margin: 0; }
  header { background: #1e1f22; padding: 16px 24px; font-size: 18px; font-weight: 600; }
  .message { display: flex; padding: 10px 24px; }
  .message:hover { background: #2e3035; }
  .avatar { width: 40px; height: 40px; border-radius: 50%; margin-right: 16px; background: #5865f2; flex-shrink: 0; }
  .author { font-weight: 600; color: #f2f3f5; margin-right: 8px; }
  .timestamp { font-size: 11px; color: #949ba4; }
  .content { white-space: pre-wrap; word-break: break-word; }
  .embed { border-left: 4px solid; background: #2b2d31; border-radius: 4px; padding: 10px 14px; margin-top: 6px; max-width: 520px; }
  .embed-title { font-weight: 600; color: #f2f3f5; margin-bottom: 4px; }
  .image { margin-top: 6px; }
  .image img { max-width: 400px; border-radius: 4px; }
</style>
</head>
<body>
<header>#{{ channel_name }}</header>
{% for m in messages %}
<div class="message">
  {% if m.AuthorIcon %}<img class="avatar" src="{{ m.AuthorIcon }}" alt="">{% else %}<div class="avatar"></div>{% endif %}
  <div>
    <div><span class="author">{{ m.AuthorName }}</span><span class="timestamp">{{ m.Timestamp }}</span></div>
    {% if m.Content %}<div class="content">{{ m.Content }}</div>{% endif %}
    {% for e in m.Embeds %}
    <div class="embed" style="border-color: {{ e.Color }};">
      {% if e.Title %}<div class="embed-title">{{ e.Title }}</div>{% endif %}
      {% if e.Description %}<div class="content">{{ e.Description }}</div>{% endif %}
    </div>
    {% endfor %}
    {% for img in m.Images %}
    <div class="image"><img src="{{ img.Source }}" alt="{{ img.Filename }}"></div>
    {% endfor %}
  </div>
</div>
{% endfor %}
</body>
</html>
`))

func renderTranscript(channelName string, messages []messageView) (string, error) {
	return transcriptTemplate.Execute(pongo2.Context{
		"channel_name": channelName,
		"messages":     messages,
	})
}
