package http

import (
	"github.com/go-chi/chi/v5"

	ltlpage "ltlcleaner/frontend/ltl"
)

// RegisterLTLRoutes registers the upload page, run downloads and the run API.
func (s *Server) RegisterLTLRoutes(r chi.Router) chi.Router {
	r.Get("/ltl", ltlpage.LTLPageQueryHandler(s.Reference))
	r.Get("/ltl/help", ltlpage.HelpPageQueryHandler(s.Reference))
	r.Post("/ltl/process", ltlpage.ProcessCommandHandler(s.Reference, s.Runs, s.Options.MaxUploadBytes))

	r.Route("/ltl/runs/{id}", func(r chi.Router) {
		r.Get("/", ltlpage.RunPageQueryHandler(s.Reference, s.Runs, s.Options.PreviewRows))
		r.Get("/download.xlsx", ltlpage.RunWorkbookHandler(s.Runs))
		r.Get("/download.csv", ltlpage.RunCSVHandler(s.Runs))
		r.Get("/load-sheet.pdf", ltlpage.RunLoadSheetHandler(s.Runs))
	})

	r.Get("/api/ltl/runs/{id}", ltlpage.RunSummaryQueryHandler(s.Runs))
	return r
}
