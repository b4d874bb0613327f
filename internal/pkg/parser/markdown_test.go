package parser

import (
	"strings"
	"testing"
)

func TestMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		contains   []string
		notContain []string
	}{
		{
			name:     "基础Markdown渲染",
			input:    "# 标题\n\n一段**加粗**的文字。",
			contains: []string{"<h1", "标题", "<strong>加粗</strong>"},
		},
		{
			name:       "script标签被剥离",
			input:      "正常内容\n\n<script>alert('xss')</script>",
			contains:   []string{"正常内容"},
			notContain: []string{"<script", "alert"},
		},
		{
			name:       "事件处理属性被剥离",
			input:      `<img src="x" onerror="alert(1)"> 图片说明`,
			contains:   []string{"图片说明"},
			notContain: []string{"onerror"},
		},
		{
			name:       "javascript协议链接被剥离",
			input:      `[点我](javascript:alert(1))`,
			contains:   []string{"点我"},
			notContain: []string{"javascript:"},
		},
		{
			name:     "GFM表格保留",
			input:    "| 列一 | 列二 |\n| --- | --- |\n| a | b |",
			contains: []string{"<table>", "<td>a</td>"},
		},
		{
			name:     "代码块的class属性保留",
			input:    "```go\nfmt.Println(\"hi\")\n```",
			contains: []string{"<code class=\"language-go\""},
		},
		{
			name:     "标题锚点id保留",
			input:    "## Hello World",
			contains: []string{`id="hello-world"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarkdownToHTML(tt.input)
			if err != nil {
				t.Fatalf("MarkdownToHTML() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("输出应包含 %q, got:\n%s", want, got)
				}
			}
			for _, forbidden := range tt.notContain {
				if strings.Contains(got, forbidden) {
					t.Errorf("输出不应包含 %q, got:\n%s", forbidden, got)
				}
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "去除所有标签",
			input: "<h1>标题</h1><p>正文<strong>加粗</strong></p>",
			want:  "标题正文加粗",
		},
		{
			name:  "纯文本原样返回",
			input: "没有标签的文字",
			want:  "没有标签的文字",
		},
		{
			name:  "script连内容一起去除",
			input: "前<script>alert(1)</script>后",
			want:  "前后",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
