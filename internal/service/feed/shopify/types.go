// Package shopify Shopify REST Admin API로부터 상품 카탈로그를 수집하는 클라이언트 패키지입니다.
//
// 페이지네이션은 응답의 Link 헤더(rel="next")가 제공하는 URL을 그대로 따라가는 방식으로 동작하며,
// 수집된 상품은 응답 순서 그대로 보존됩니다.
package shopify

// StatusActive 판매 중인 상품의 라이프사이클 상태값
const StatusActive = "active"

// DefaultVariantTitle 옵션이 없는 상품의 단일 Variant에 Shopify가 부여하는 제목 센티널 값
const DefaultVariantTitle = "Default Title"

// Product Shopify 상품 레코드입니다. 조회 전용이며 피드 생성 한 회차 동안만 유지됩니다.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	Tags        string    `json:"tags"`
	Options     []Option  `json:"options"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
}

// IsActive 상품이 판매 중(active) 상태인지 여부를 반환합니다.
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

// Option 상품의 옵션 축(예: Color, Size)을 정의합니다.
// Position(1-base)은 Variant의 위치 기반 옵션 슬롯(option1~option3)과 대응됩니다.
type Option struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Image 상품 이미지입니다. 응답 순서상 첫 번째 이미지가 대표 이미지입니다.
type Image struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	Src      string `json:"src"`
}

// Variant 상품의 구매 가능한 개별 구성(특정 색상/사이즈 등)입니다.
//
// 원본 데이터의 부재(null)와 빈 값을 구분해야 하는 필드는 포인터 타입으로 선언합니다.
// 특히 InventoryManagement가 null인 경우 "재고 추적 안 함 = 항상 구매 가능"을 의미합니다.
type Variant struct {
	ID                  int64   `json:"id"`
	ProductID           int64   `json:"product_id"`
	Title               string  `json:"title"`
	SKU                 string  `json:"sku"`
	Price               string  `json:"price"`
	CompareAtPrice      *string `json:"compare_at_price"`
	InventoryManagement *string `json:"inventory_management"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	Barcode             *string `json:"barcode"`
	Weight              float64 `json:"weight"`
	WeightUnit          string  `json:"weight_unit"`
	Option1             *string `json:"option1"`
	Option2             *string `json:"option2"`
	Option3             *string `json:"option3"`
}

// OptionSlot 1-base 위치에 해당하는 옵션 값을 반환합니다. 범위를 벗어나거나 값이 없으면 빈 문자열을 반환합니다.
func (v *Variant) OptionSlot(position int) string {
	var slot *string

	switch position {
	case 1:
		slot = v.Option1
	case 2:
		slot = v.Option2
	case 3:
		slot = v.Option3
	}

	if slot == nil {
		return ""
	}
	return *slot
}
