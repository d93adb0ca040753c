package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"masterboxer.com/kpitter-web/auth"
	"masterboxer.com/kpitter-web/models"
	"masterboxer.com/kpitter-web/services"
)

func LoginForm(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.render(w, http.StatusOK, "login.html", d.page(r))
	}
}

// Login checks the credentials against GET /me before a session exists, so a
// failed attempt never leaves credentials behind.
func Login(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := models.Credentials{
			Username: strings.TrimSpace(r.PostFormValue("username")),
			Password: r.PostFormValue("password"),
		}

		data := d.page(r)
		data.Form.Username = creds.Username

		if !creds.IsAuthenticated() {
			data.Error = data.T(KeyFieldsRequired)
			d.render(w, http.StatusBadRequest, "login.html", data)
			return
		}

		if _, err := d.Backend.Me(r.Context(), creds); err != nil {
			status := http.StatusUnauthorized
			if !errors.Is(err, services.ErrUnauthorized) && !errors.Is(err, services.ErrForbidden) {
				log.Printf("[Auth] login check for %s failed: %v", creds.Username, err)
				status = http.StatusBadGateway
			}
			data.Error = data.T(KeyLoginFailed)
			d.render(w, status, "login.html", data)
			return
		}

		if !d.startSession(w, r, creds) {
			return
		}
		http.Redirect(w, r, "/me", http.StatusSeeOther)
	}
}

func RegisterForm(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.render(w, http.StatusOK, "register.html", d.page(r))
	}
}

func Register(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := models.RegisterRequest{
			Username: strings.TrimSpace(r.PostFormValue("username")),
			Password: r.PostFormValue("password"),
			FullName: strings.TrimSpace(r.PostFormValue("full_name")),
		}

		data := d.page(r)
		data.Form.Username = req.Username
		data.Form.FullName = req.FullName

		if req.Username == "" || req.Password == "" {
			data.Error = data.T(KeyFieldsRequired)
			d.render(w, http.StatusBadRequest, "register.html", data)
			return
		}

		if _, err := d.Backend.Register(r.Context(), req); err != nil {
			var statusErr *services.StatusError
			switch {
			case errors.Is(err, services.ErrConflict):
				data.Error = data.T(KeyUsernameTaken)
				d.render(w, http.StatusConflict, "register.html", data)
			case errors.As(err, &statusErr) && statusErr.Code < 500:
				data.Error = data.T(KeyRegisterFailed)
				d.render(w, http.StatusBadRequest, "register.html", data)
			default:
				log.Printf("[Auth] registration of %s failed: %v", req.Username, err)
				data.Error = data.T(KeyRegisterFailed)
				d.render(w, http.StatusBadGateway, "register.html", data)
			}
			return
		}

		log.Printf("[Auth] Registered %s", req.Username)
		if !d.startSession(w, r, models.Credentials{Username: req.Username, Password: req.Password}) {
			return
		}
		http.Redirect(w, r, "/me", http.StatusSeeOther)
	}
}

func Logout(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session := auth.FromContext(r.Context()); session != nil {
			d.Views.DropSession(session.ID)
			if err := d.Sessions.End(r.Context(), w, session); err != nil {
				log.Printf("[Auth] logout of %s: %v", session.Username(), err)
			}
		} else {
			d.Sessions.Clear(w)
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// startSession replaces any session the browser already had.
func (d *Deps) startSession(w http.ResponseWriter, r *http.Request, creds models.Credentials) bool {
	if old := auth.FromContext(r.Context()); old != nil {
		d.Views.DropSession(old.ID)
		if err := d.Sessions.End(r.Context(), w, old); err != nil {
			log.Printf("[Auth] could not end previous session: %v", err)
		}
	}

	if _, err := d.Sessions.Start(r.Context(), w, creds); err != nil {
		d.Render500(w, r, err)
		return false
	}
	return true
}
