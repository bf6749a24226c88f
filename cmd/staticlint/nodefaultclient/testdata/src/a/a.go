package a

import (
	"net/http"
	"time"
)

func fetch(url string) (*http.Response, error) {
	return http.Get(url) // want "http.Get обходит настроенный клиент"
}

func probe(url string) (*http.Response, error) {
	return http.DefaultClient.Head(url) // want "http.DefaultClient обходит настроенный клиент"
}

func custom(url string) (*http.Response, error) {
	client := &http.Client{Timeout: time.Second}
	return client.Get(url)
}
