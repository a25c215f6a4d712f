// Package service 애플리케이션을 구성하는 장기 실행 서비스의 공통 규약을 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service 애플리케이션 생명주기에 따라 시작/종료되는 장기 실행 서비스의 인터페이스입니다.
//
// 구현 시 주의사항:
//   - Start()는 내부 고루틴을 기동한 후 즉시 반환해야 합니다.
//   - serviceStopCtx가 취소되면 점유한 리소스를 정리하고 serviceStopWG.Done()을 호출해야 합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
