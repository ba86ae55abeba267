package providers

import (
	"github.com/samber/do/v2"

	"github.com/marginapp/margin-server/internal/logger"
	"github.com/marginapp/margin-server/internal/service"
	"github.com/marginapp/margin-server/internal/store"
)

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	st := do.MustInvoke[*store.Store](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(st, searchService, log.Logger), nil
}

// ProvideAnnotationService provides the annotation service.
func ProvideAnnotationService(i do.Injector) (*service.AnnotationService, error) {
	st := do.MustInvoke[*store.Store](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnnotationService(st, searchService, log.Logger), nil
}
