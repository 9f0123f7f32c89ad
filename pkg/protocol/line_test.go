package protocol_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/omochice/aurorachat/pkg/protocol"
)

func TestEncodeLine(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{name: "appends terminator", text: "hi", want: "hi\n"},
		{name: "empty text", text: "", want: "\n"},
		{name: "largest allowed line", text: strings.Repeat("a", protocol.MaxLineSize-1), want: strings.Repeat("a", protocol.MaxLineSize-1) + "\n"},
		{name: "too long", text: strings.Repeat("a", protocol.MaxLineSize), wantErr: protocol.ErrLineTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := protocol.EncodeLine(tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("EncodeLine() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EncodeLine() unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("EncodeLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeChunk(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []string
	}{
		{name: "single line", data: []byte("hello\n"), want: []string{"hello"}},
		{name: "no terminator", data: []byte("partial"), want: []string{"partial"}},
		{name: "several lines", data: []byte("a\nb\n"), want: []string{"a", "b"}},
		{name: "crlf", data: []byte("a\r\nb\r\n"), want: []string{"a", "b"}},
		{name: "blank lines dropped", data: []byte("\n\nx\n\n"), want: []string{"x"}},
		{name: "only terminator", data: []byte("\n"), want: nil},
		{name: "utf8 kept", data: []byte("héllo\n"), want: []string{"héllo"}},
		{name: "latin1 fallback", data: []byte{'c', 'a', 'f', 0xe9, '\n'}, want: []string{"café"}},
		{name: "latin1 without terminator", data: []byte{'c', 'a', 'f', 0xe9}, want: []string{"café"}},
		{name: "latin1 only on the invalid line", data: []byte("héllo\ncaf\xe9\nñu\n"), want: []string{"héllo", "café", "ñu"}},
		{
			name: "read ends mid rune",
			data: []byte("héllo " + strings.Repeat("ä", 200) + "\n")[:protocol.RecvBufferSize],
			want: []string{"héllo " + strings.Repeat("ä", 124)},
		},
		{name: "read starts mid rune", data: []byte("\xa4ñu\nok\n"), want: []string{"ñu", "ok"}},
		{name: "cut rune inside a line is latin1", data: []byte("a\xc3\nb\n"), want: []string{"aÃ", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := protocol.DecodeChunk(tt.data)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeChunk() = %q, want %q", got, tt.want)
			}
		})
	}
}
