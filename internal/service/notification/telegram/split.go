package telegram

import (
	"strings"
	"unicode/utf8"
)

// splitMessage 메시지를 최대 길이 이하의 청크들로 분할합니다.
//
// 분할 전략:
//  1. 가능한 한 줄바꿈(\n) 단위로 나누어 문장이 중간에 잘리지 않도록 합니다.
//  2. 한 줄 자체가 최대 길이를 초과하는 경우에만 강제로 자르며,
//     이때 UTF-8 문자 경계를 존중하여 멀티바이트 문자가 깨지지 않도록 합니다.
func splitMessage(message string, maxLength int) []string {
	if len(message) <= maxLength {
		return []string{message}
	}

	var chunks []string
	var sb strings.Builder
	sb.Grow(maxLength)

	for _, line := range strings.Split(message, "\n") {
		neededSpace := len(line)
		if sb.Len() > 0 {
			neededSpace++
		}

		if sb.Len()+neededSpace > maxLength {
			if sb.Len() > 0 {
				chunks = append(chunks, sb.String())
				sb.Reset()
			}

			// 한 줄 자체가 최대 길이를 초과하면 문자 경계에 맞추어 강제 분할
			for len(line) > maxLength {
				cut := safeCutIndex(line, maxLength)
				chunks = append(chunks, line[:cut])
				line = line[cut:]
			}
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}

	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}

	return chunks
}

// safeCutIndex maxLength 이하이면서 UTF-8 문자 경계에 맞는 가장 큰 바이트 인덱스를 반환합니다.
func safeCutIndex(s string, maxLength int) int {
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		// 단일 문자가 최대 길이보다 긴 비정상 입력은 그대로 자릅니다.
		return maxLength
	}
	return cut
}
