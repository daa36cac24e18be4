package tests

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"

	"github.com/nocturnal-narratives/nocturnal-go/nocturnal/common"
)

func jsonToReader(m common.M) io.Reader {
	out, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return bytes.NewReader(out)
}

func invokeApi(t *testing.T, method string, url string, body common.M) (int, common.M) {
	var reader io.Reader
	if body != nil {
		reader = jsonToReader(body)
	}
	request, err := http.NewRequest(method, url, reader)
	assert.Nil(t, err)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := http.DefaultClient.Do(request)
	assert.Nil(t, err)
	defer response.Body.Close()

	out, err := io.ReadAll(response.Body)
	assert.Nil(t, err)

	var parsed common.M
	err = json.Unmarshal(out, &parsed)
	assert.Nilf(t, err, "Error: %v, received bytes: %v <--", err, string(out))

	return response.StatusCode, parsed
}

func invokeApiAsList(t *testing.T, method string, url string) (int, common.A) {
	request, err := http.NewRequest(method, url, nil)
	assert.Nil(t, err)

	response, err := http.DefaultClient.Do(request)
	assert.Nil(t, err)
	defer response.Body.Close()

	out, err := io.ReadAll(response.Body)
	assert.Nil(t, err)

	var parsed common.A
	err = json.Unmarshal(out, &parsed)
	assert.Nilf(t, err, "Error: %v, received bytes: %v <--", err, string(out))

	return response.StatusCode, parsed
}

func errorMessage(parsed common.M) string {
	errMap, ok := parsed["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	message, _ := errMap["message"].(string)
	return message
}
