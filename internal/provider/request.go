package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type reqConfig struct {
	Method  string
	Url     string
	Headers []string
	Body    []byte
}

func request[T any](ctx context.Context, client *http.Client, config reqConfig, expectedResCode int) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, config.Method, config.Url, bytes.NewBuffer(config.Body))

	if err != nil {
		return nil, err
	}

	for i := 0; i < len(config.Headers); i++ {
		headerKV := strings.SplitN(config.Headers[i], ":", 2)
		req.Header.Add(headerKV[0], strings.TrimSpace(headerKV[1]))
	}

	resp, err := client.Do(req)

	if err != nil {
		return nil, err
	}

	defer func() {
		err = resp.Body.Close()
		if err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		}
	}()

	if resp.StatusCode != expectedResCode {
		return nil, fmt.Errorf("unexpected response status code %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, err
	} else if len(content) == 0 {
		return nil, errors.New("no response content error")
	}

	var t *T
	err = json.Unmarshal(content, &t)

	if err != nil {
		return nil, err
	}

	return t, nil
}
