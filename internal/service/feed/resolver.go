// Package feed Shopify 상품 카탈로그를 Google Shopping 형식의 CSV 피드로 변환하는 핵심 패키지입니다.
//
// 변환 규칙의 대부분은 부분적으로만 존재하는 원본 데이터(옵션, 재고, 바코드, 무게 등)로부터
// 피드 필드를 도출하는 작은 비즈니스 규칙들이며, 누락된 선택 값은 에러 없이 항상
// 빈 값/기본값으로 해석됩니다. (defensive-default 정책)
package feed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/shopping-feed-server/internal/service/feed/shopify"
)

const (
	// AvailabilityInStock 구매 가능한 상태값
	AvailabilityInStock = "in_stock"

	// AvailabilityOutOfStock 품절 상태값
	AvailabilityOutOfStock = "out_of_stock"

	// defaultWeightUnit 무게 단위가 지정되지 않은 경우의 기본값
	defaultWeightUnit = "kg"
)

// 로컬라이즈된 옵션명 폴백 체인입니다. 앞에서부터 순서대로 시도하며 첫 번째로 값이 확인되는 옵션이 선택됩니다.
// 새로운 로케일 지원 시 제어 흐름 변경 없이 이 테이블에 후보만 추가하면 됩니다.
var (
	colorOptionNames    = []string{"Color", "Farbe"}
	sizeOptionNames     = []string{"Size", "Größe"}
	materialOptionNames = []string{"Material"}
)

// resolveAvailability 상품 상태와 재고 정보로부터 구매 가능 여부를 도출합니다.
//
// 규칙:
//   - 상품이 판매 중(active) 상태가 아니면 재고 수량과 무관하게 품절로 처리합니다.
//   - 재고 추적 모드(inventory_management)가 null이면 항상 구매 가능으로 처리합니다.
//   - 그 외에는 재고 수량이 0보다 큰 경우에만 구매 가능으로 처리합니다.
func resolveAvailability(p *shopify.Product, v *shopify.Variant) string {
	if !p.IsActive() {
		return AvailabilityOutOfStock
	}

	if v.InventoryManagement == nil || *v.InventoryManagement == "" {
		return AvailabilityInStock
	}

	if v.InventoryQuantity > 0 {
		return AvailabilityInStock
	}
	return AvailabilityOutOfStock
}

// resolveOption 후보 옵션명을 순서대로 시도하여 Variant의 해당 옵션 값을 찾습니다.
//
// 각 후보에 대해 상품의 옵션 목록에서 이름이 대소문자 구분 없이 일치하는 옵션을 찾고,
// 해당 옵션의 1-base 위치에 대응하는 Variant의 위치 기반 슬롯(option1~option3) 값을 읽습니다.
// 일치하는 옵션이 없거나 슬롯이 비어있으면 다음 후보로 넘어가며, 모두 실패하면 빈 문자열을 반환합니다.
func resolveOption(p *shopify.Product, v *shopify.Variant, candidates []string) string {
	for _, candidate := range candidates {
		for _, opt := range p.Options {
			if !strings.EqualFold(opt.Name, candidate) {
				continue
			}

			if value := v.OptionSlot(opt.Position); value != "" {
				return value
			}
		}
	}
	return ""
}

// resolvePriceTier 정상가와 할인가를 도출합니다.
//
// 할인은 compare_at_price가 존재하고 수치상으로 price보다 엄격히 큰 경우에만 성립합니다.
// (문자열 비교가 아닌 수치 비교)
//
// 할인 성립 시: 할인 전 가격(compare_at_price)이 정상가로, 현재 판매 가격(price)이 할인가로 표기됩니다.
// 할인 미성립 시: price가 정상가이며 할인가는 빈 값입니다.
//
// 가격은 "소수점 2자리 + 공백 + 통화 코드" 형식으로 표기합니다. (예: "19.99 EUR")
func resolvePriceTier(v *shopify.Variant, currencyCode string) (price, salePrice string) {
	priceValue := parseDecimal(v.Price)

	if v.CompareAtPrice != nil && *v.CompareAtPrice != "" {
		compareAtValue := parseDecimal(*v.CompareAtPrice)
		if compareAtValue > priceValue {
			return formatPrice(compareAtValue, currencyCode), formatPrice(priceValue, currencyCode)
		}
	}

	return formatPrice(priceValue, currencyCode), ""
}

// parseDecimal 소스의 십진수 문자열을 수치로 변환합니다. 파싱 불가능한 값은 0으로 처리합니다.
func parseDecimal(s string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return value
}

// formatPrice 가격을 "소수점 2자리 + 통화 코드" 형식으로 표기합니다.
func formatPrice(value float64, currencyCode string) string {
	return fmt.Sprintf("%.2f %s", value, currencyCode)
}

// resolveIdentifierExists GTIN(바코드) 존재 여부 플래그를 도출합니다.
//
// 플랫폼 규약: 바코드가 없으면 문자열 "false"를 표기하고,
// 바코드가 있으면 빈 값으로 두어 식별자가 존재함을 암시합니다.
func resolveIdentifierExists(v *shopify.Variant) string {
	if v.Barcode == nil || *v.Barcode == "" {
		return "false"
	}
	return ""
}

// resolveGTIN Variant의 바코드 값을 반환합니다. 없으면 빈 문자열입니다.
func resolveGTIN(v *shopify.Variant) string {
	if v.Barcode == nil {
		return ""
	}
	return *v.Barcode
}

// resolveShippingWeight 배송 무게를 "수치 + 공백 + 단위" 형식으로 도출합니다.
// 무게가 0보다 큰 경우에만 표기하며, 단위가 지정되지 않은 경우 kg을 사용합니다.
func resolveShippingWeight(v *shopify.Variant) string {
	if v.Weight <= 0 {
		return ""
	}

	unit := v.WeightUnit
	if unit == "" {
		unit = defaultWeightUnit
	}

	return strconv.FormatFloat(v.Weight, 'f', -1, 64) + " " + unit
}

// resolveDescription HTML 상품 설명에서 태그를 제거하고 공백을 정규화한 텍스트를 반환합니다.
// 연속된 공백 문자는 하나의 공백으로 축약되며, 앞뒤 공백은 제거됩니다.
func resolveDescription(bodyHTML string) string {
	if bodyHTML == "" {
		return ""
	}

	text := bodyHTML
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML)); err == nil {
		text = doc.Text()
	}

	return strings.Join(strings.Fields(text), " ")
}

// resolveTitle 피드에 표기할 상품 제목을 도출합니다.
// Variant 제목이 "옵션 없음" 센티널 값이면 상품 제목을 그대로 사용하고,
// 그렇지 않으면 "상품 제목 - Variant 제목" 형식으로 조합합니다.
func resolveTitle(p *shopify.Product, v *shopify.Variant) string {
	if v.Title == "" || v.Title == shopify.DefaultVariantTitle {
		return p.Title
	}
	return p.Title + " - " + v.Title
}

// resolveAdditionalImages 대표 이미지를 제외한 나머지 이미지 URL을 콤마로 연결하여 반환합니다.
//
// 콤마 연결은 바깥쪽 CSV 이스케이프 이전에 수행됩니다. URL 자체에 콤마가 포함된 경우에도
// 필드 단위 이스케이프가 전체 문자열을 감싸므로 문서 구조는 손상되지 않으나,
// 소비 측에서 서브 구분자의 모호성이 생길 수 있습니다. 대상 플랫폼의 규약이 확인되기 전까지
// 단순 콤마 연결 방식을 유지합니다.
func resolveAdditionalImages(p *shopify.Product) string {
	if len(p.Images) <= 1 {
		return ""
	}

	urls := make([]string, 0, len(p.Images)-1)
	for _, img := range p.Images[1:] {
		urls = append(urls, img.Src)
	}
	return strings.Join(urls, ",")
}
