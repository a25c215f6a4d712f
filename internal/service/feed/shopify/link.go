package shopify

import "strings"

// nextPageURL HTTP Link 헤더에서 다음 페이지(rel="next")의 URL을 추출합니다.
//
// Shopify는 커서 기반 페이지네이션의 연속 토큰을 Link 헤더로 전달합니다.
// 예: <https://shop.myshopify.com/admin/api/2024-07/products.json?page_info=xxx&limit=250>; rel="next"
//
// 반환된 URL은 불투명한 값으로 취급해야 하며, 쿼리 파라미터를 직접 재구성해서는 안 됩니다.
// 다음 페이지가 없으면 빈 문자열을 반환합니다.
func nextPageURL(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}

	// Link 헤더는 콤마로 구분된 여러 항목(rel="previous", rel="next" 등)을 가질 수 있습니다.
	for _, entry := range strings.Split(linkHeader, ",") {
		entry = strings.TrimSpace(entry)

		urlPart, relPart, found := strings.Cut(entry, ";")
		if !found {
			continue
		}

		if !strings.Contains(relPart, `rel="next"`) {
			continue
		}

		urlPart = strings.TrimSpace(urlPart)
		if strings.HasPrefix(urlPart, "<") && strings.HasSuffix(urlPart, ">") {
			return urlPart[1 : len(urlPart)-1]
		}
	}

	return ""
}
