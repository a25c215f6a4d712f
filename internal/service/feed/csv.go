package feed

import "strings"

// escapeField CSV 필드 하나를 이스케이프합니다.
//
// 규칙: 필드에 큰따옴표, 콤마, 개행 문자 중 하나라도 포함되어 있으면
// 전체를 큰따옴표로 감싸고 내부의 큰따옴표는 두 번 반복하여 표기합니다.
// 그 외의 값은 수정 없이 그대로 출력합니다.
func escapeField(s string) string {
	if !strings.ContainsAny(s, "\",\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Render 헤더와 레코드들을 하나의 CSV 문서로 직렬화합니다.
//
// 한 레코드는 한 줄이며(헤더 포함), 필드는 콤마로, 줄은 단일 개행 문자로 연결됩니다.
// 마지막 줄 뒤에는 개행을 붙이지 않습니다. 이스케이프 규칙은 헤더를 포함한 모든 필드에
// 동일하게 적용됩니다.
func Render(header []string, rows [][]string) string {
	var sb strings.Builder

	writeLine := func(fields []string) {
		for i, field := range fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(escapeField(field))
		}
	}

	writeLine(header)
	for _, row := range rows {
		sb.WriteByte('\n')
		writeLine(row)
	}

	return sb.String()
}
