package feed

import (
	"fmt"
	"strconv"

	"github.com/darkkaiser/shopping-feed-server/internal/service/feed/shopify"
)

// conditionNew 피드에 표기하는 상품 상태 고정값 (신품만 취급)
const conditionNew = "new"

// syntheticIDPrefix SKU가 없는 Variant에 부여하는 합성 식별자의 접두사
const syntheticIDPrefix = "shopify"

// feedColumns 피드 문서의 컬럼명과 순서입니다. 이 순서는 소비 플랫폼과의 계약이므로 변경해서는 안 됩니다.
var feedColumns = []string{
	"id",
	"title",
	"description",
	"link",
	"image_link",
	"additional_image_link",
	"availability",
	"price",
	"sale_price",
	"brand",
	"condition",
	"gtin",
	"identifier_exists",
	"product_type",
	"item_group_id",
	"color",
	"size",
	"material",
	"shipping_weight",
}

// Header 피드 문서의 컬럼명 목록을 반환합니다.
func Header() []string {
	header := make([]string, len(feedColumns))
	copy(header, feedColumns)
	return header
}

// BuildRow 하나의 상품+Variant 쌍으로부터 19개 필드의 피드 레코드를 생성합니다.
//
// 필드별 도출 규칙:
//   - id: SKU가 있으면 SKU, 없으면 "shopify_<상품ID>_<VariantID>" 형식의 합성 식별자
//   - link: 스토어 기준 URL + "/products/" + 상품 핸들
//   - image_link: 첫 번째 이미지 URL (이미지가 없으면 빈 값)
//   - item_group_id: 상품 ID (동일 상품의 Variant들을 묶는 그룹 식별자)
//   - 나머지 필드는 resolver 함수들의 규칙을 따릅니다.
func BuildRow(p *shopify.Product, v *shopify.Variant, baseURL, currencyCode string) []string {
	id := v.SKU
	if id == "" {
		id = fmt.Sprintf("%s_%d_%d", syntheticIDPrefix, p.ID, v.ID)
	}

	var imageLink string
	if len(p.Images) > 0 {
		imageLink = p.Images[0].Src
	}

	price, salePrice := resolvePriceTier(v, currencyCode)

	return []string{
		id,
		resolveTitle(p, v),
		resolveDescription(p.BodyHTML),
		baseURL + "/products/" + p.Handle,
		imageLink,
		resolveAdditionalImages(p),
		resolveAvailability(p, v),
		price,
		salePrice,
		p.Vendor,
		conditionNew,
		resolveGTIN(v),
		resolveIdentifierExists(v),
		p.ProductType,
		strconv.FormatInt(p.ID, 10),
		resolveOption(p, v, colorOptionNames),
		resolveOption(p, v, sizeOptionNames),
		resolveOption(p, v, materialOptionNames),
		resolveShippingWeight(v),
	}
}
