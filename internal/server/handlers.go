package server

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/thanhnhan2tn/package-updater/pkg/buildinfo"
	"github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/project"
	"github.com/thanhnhan2tn/package-updater/pkg/updater"
)

type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

type upgradeBody struct {
	ProjectName string      `json:"projectName" validate:"required"`
	PackageInfo packageInfo `json:"packageInfo" validate:"required"`
}

type packageInfo struct {
	Name          string `json:"name" validate:"required"`
	LatestVersion string `json:"latestVersion" validate:"required"`
	Type          string `json:"type" validate:"omitempty,oneof=frontend server"`
}

type imageUpgradeBody struct {
	ImageName     string `json:"imageName" validate:"required"`
	LatestVersion string `json:"latestVersion" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=frontend server"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: code})
}

// decode reads a JSON body into v and runs its struct validation.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if err := s.validate.Struct(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", describe(err))
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, field+" must be one of: "+fe.Param())
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Seconds(),
		"build":  buildinfo.Current(),
	})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Projects(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Project(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	deps, err := s.svc.Packages(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(deps))
}

func (s *Server) handlePackageVersion(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.PackageVersion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	deps, err := s.svc.Dependencies(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(deps))
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	var body upgradeBody
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Upgrade(r.Context(), updater.UpgradeRequest{
		Project: body.ProjectName,
		Name:    body.PackageInfo.Name,
		Version: body.PackageInfo.LatestVersion,
		Type:    project.Kind(body.PackageInfo.Type),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.svc.Images(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(images))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	kind, err := project.ParseKind(chi.URLParam(r, "type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	img, err := s.svc.Image(r.Context(), chi.URLParam(r, "project"), kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (s *Server) handleImageUpgrade(w http.ResponseWriter, r *http.Request) {
	var body imageUpgradeBody
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.UpgradeImage(r.Context(), updater.ImageUpgradeRequest{
		Project:   chi.URLParam(r, "project"),
		ImageName: body.ImageName,
		Version:   body.LatestVersion,
		Type:      project.Kind(body.Type),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
