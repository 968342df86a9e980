package definition

import (
	"embed"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/examterm/examterm/internal/model"
)

//go:embed sample_exam.yml
var sampleFS embed.FS

const maxExamFileSize = 4 << 20

// Load reads an exam definition from a local file path or an http(s) URL
// and builds the normalized model.
func Load(pathOrURL string) (*model.ExamDefinition, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		data, err = fetch(pathOrURL)
	} else {
		data, err = os.ReadFile(pathOrURL)
	}
	if err != nil {
		return nil, fmt.Errorf("load exam file %s: %w", pathOrURL, err)
	}
	slog.Debug("loaded exam file", "source", pathOrURL, "bytes", len(data))
	return Parse(data)
}

// Sample builds the embedded sample exam, used by the --sample flag.
func Sample() (*model.ExamDefinition, error) {
	data, err := sampleFS.ReadFile("sample_exam.yml")
	if err != nil {
		return nil, fmt.Errorf("read embedded sample exam: %w", err)
	}
	return Parse(data)
}

func fetch(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxExamFileSize))
}
