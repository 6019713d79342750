package crawlers

import (
	"context"
	"testing"
)

func TestImageClassifier_ExtensionSkipsProbe(t *testing.T) {
	tests := []string{
		"http://x.com/photo.PNG",
		"http://x.com/photo.png",
		"http://x.com/a/b.JpEg?size=large",
		"http://x.com/c.gif#frag",
		"http://x.com/d.bmp",
		"http://x.com/e.jpg",
	}

	for _, u := range tests {
		t.Run(u, func(t *testing.T) {
			client := newFakeClient()
			classifier := NewImageClassifier(client)

			if !classifier.IsImage(context.Background(), u) {
				t.Errorf("%s 应判定为图片", u)
			}
			if len(client.heads) != 0 || classifier.ProbeCount() != 0 {
				t.Errorf("扩展名命中时不应发起HEAD探测, 实际 %d 次", len(client.heads))
			}
		})
	}
}

func TestImageClassifier_Probe(t *testing.T) {
	tests := []struct {
		name     string
		resource *fakeResource
		expected bool
	}{
		{"image/jpeg带参数", &fakeResource{contentType: "image/jpeg; charset=binary"}, true},
		{"大写Content-Type", &fakeResource{contentType: "IMAGE/PNG"}, true},
		{"image/gif", &fakeResource{contentType: "image/gif"}, true},
		{"image/webp不在认可列表", &fakeResource{contentType: "image/webp"}, false},
		{"text/html", &fakeResource{contentType: "text/html"}, false},
		{"非200状态码", &fakeResource{contentType: "image/png", status: 404}, false},
		{"缺少Content-Type", &fakeResource{contentType: ""}, false},
		{"探测失败", &fakeResource{err: context.DeadlineExceeded}, false},
		{"资源不存在", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const u = "http://cdn.x.com/image?id=42"
			client := newFakeClient()
			if tt.resource != nil {
				client.resources[u] = *tt.resource
			}
			classifier := NewImageClassifier(client)

			if got := classifier.IsImage(context.Background(), u); got != tt.expected {
				t.Errorf("期望 %v, 实际 %v", tt.expected, got)
			}
			if classifier.ProbeCount() != 1 || len(client.heads) != 1 {
				t.Errorf("应发起1次HEAD探测, 实际 %d", len(client.heads))
			}
		})
	}
}

func TestImageClassifier_TrailingSlashIsNotExtension(t *testing.T) {
	client := newFakeClient()
	classifier := NewImageClassifier(client)

	classifier.IsImage(context.Background(), "http://x.com/photo.png/")
	if len(client.heads) != 1 {
		t.Errorf("路径以'/'结尾时应走HEAD探测")
	}
}

func TestIsImageContentType(t *testing.T) {
	tests := map[string]bool{
		"image/jpeg":               true,
		"image/bmp":                true,
		"Image/Png; q=0.9":         true,
		"image/svg+xml":            false,
		"application/octet-stream": false,
		"":                         false,
	}
	for ct, expected := range tests {
		if got := IsImageContentType(ct); got != expected {
			t.Errorf("IsImageContentType(%q) 期望 %v, 实际 %v", ct, expected, got)
		}
	}
}
