package fetcher

import (
	"net/url"
	"slices"
	"strings"
)

// sensitiveQueryKeys 전체 문자열이 정확히 일치해야 마스킹되는 쿼리 파라미터 키워드 목록입니다.
// "key", "token" 같은 단어를 부분 일치로 검사하면 무해한 파라미터까지 마스킹되는 오탐이 발생할 수 있어
// 대소문자 구분 없이 전체 문자열이 일치할 때만 민감한 정보로 처리합니다.
var sensitiveQueryKeys = []string{
	"token", "auth", "key", "secret", "password", "signature",
	"access_token", "api_key", "client_secret", "refresh_token",
}

// sensitiveQuerySuffixes 특정 접미사로 끝나면 마스킹되는 쿼리 파라미터 키워드 목록입니다.
var sensitiveQuerySuffixes = []string{
	"_token", "_secret", "_key", "_password", "_sig",
}

// redactURL URL의 민감한 쿼리 파라미터 값을 마스킹한 문자열을 반환합니다.
// 로깅이나 에러 메시지에 URL을 포함할 때 인증 토큰 노출을 방지하기 위해 사용합니다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	query := u.Query()
	changed := false

	for key := range query {
		lower := strings.ToLower(key)

		masked := slices.Contains(sensitiveQueryKeys, lower)
		if !masked {
			for _, suffix := range sensitiveQuerySuffixes {
				if strings.HasSuffix(lower, suffix) {
					masked = true
					break
				}
			}
		}

		if masked {
			query.Set(key, "REDACTED")
			changed = true
		}
	}

	if !changed {
		return u.String()
	}

	clone := *u
	clone.RawQuery = query.Encode()
	return clone.String()
}
