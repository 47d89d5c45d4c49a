package siteurl

import (
	"net/url"

	"git.agora.community/agora/agora/src/config"
	"git.agora.community/agora/agora/src/oops"
)

var baseUrl string

func init() {
	SetGlobalBaseUrl(config.Config.BaseUrl)
}

func SetGlobalBaseUrl(fullBaseUrl string) {
	parsed, err := url.Parse(fullBaseUrl)
	if err != nil {
		panic(oops.New(err, "failed to parse base url: %s", fullBaseUrl))
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		panic(oops.New(nil, "base url must include a scheme and a host: %s", fullBaseUrl))
	}

	baseUrl = parsed.Scheme + "://" + parsed.Host
}

type Q struct {
	Name  string
	Value string
}

func Url(path string, query []Q) string {
	return UrlWithFragment(path, query, "")
}

func UrlWithFragment(path string, query []Q, fragment string) string {
	result := baseUrl + "/" + trim(path)
	if q := encodeQuery(query); q != "" {
		result += "?" + q
	}
	if fragment != "" {
		result += "#" + fragment
	}
	return result
}

func trim(path string) string {
	if path[0] == '/' {
		return path[1:]
	}
	return path
}

func encodeQuery(query []Q) string {
	result := url.Values{}
	for _, q := range query {
		result.Set(q.Name, q.Value)
	}
	return result.Encode()
}
