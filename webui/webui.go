// Package webui serves the drilldeck HTML interface.  Handlers read the
// signed-in user and the post feed through the fetch cache, so a page
// render never repeats a lookup another component has already done.
package webui

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"

	"drilldeck/authz"
	"drilldeck/backend"
	"drilldeck/dblayer"
	"drilldeck/dbtypes"
	"drilldeck/fetchcache"
	"drilldeck/forms"
	"drilldeck/session"
	"drilldeck/webui/uitemplates"

	"github.com/golang/glog"
)

// Cache keys shared with the process wiring in cmd/drilldeck.
const (
	UserCacheKey  = "user"
	PostsCacheKey = "posts"
)

// BlobSource serves uploaded bytes directly, for the in-memory backend
// where there is no real download URL.
type BlobSource interface {
	Blob(ref string) ([]byte, bool)
}

type WebUI struct {
	identity backend.Identity
	db       *dblayer.DB
	resolver *session.Resolver
	cache    *fetchcache.Cache

	blobs BlobSource
}

func New(identity backend.Identity, db *dblayer.DB, resolver *session.Resolver, cache *fetchcache.Cache) *WebUI {
	return &WebUI{
		identity: identity,
		db:       db,
		resolver: resolver,
		cache:    cache,
	}
}

// SetBlobSource enables the /blobs/ route.
func (u *WebUI) SetBlobSource(blobs BlobSource) {
	u.blobs = blobs
}

func (u *WebUI) Register(m *http.ServeMux) {
	m.HandleFunc("/", u.homeHandler)
	m.HandleFunc("/log-in", u.logInHandler)
	m.HandleFunc("/register", u.registerHandler)
	m.HandleFunc("/log-out", u.logOutHandler)
	m.HandleFunc("/profile", u.profileHandler)
	m.HandleFunc("/employee", u.employeePostsHandler)
	m.HandleFunc("/employee/like", u.likeHandler)
	m.HandleFunc("/employee/quiz", u.employeeQuizListHandler)
	m.HandleFunc("/employee/quiz/take", u.takeQuizHandler)
	m.HandleFunc("/employee/ticket", u.ticketHandler)
	m.HandleFunc("/admin", u.adminPostsHandler)
	m.HandleFunc("/admin/create-post", u.createPostHandler)
	m.HandleFunc("/admin/delete-post", u.deletePostHandler)
	m.HandleFunc("/admin/tickets", u.adminTicketsHandler)
	m.HandleFunc("/admin/feedback", u.feedbackHandler)
	m.HandleFunc("/admin/quiz", u.adminQuizHandler)
	m.HandleFunc("/admin/quiz/results", u.quizResultsHandler)
	m.HandleFunc("/admin/people", u.peopleHandler)
	if u.blobs != nil {
		m.HandleFunc("/blobs/", u.blobHandler)
	}
}

// currentUser reads the signed-in user through the cache, resolving it on
// a miss.  A nil result means no user is signed in.
func (u *WebUI) currentUser(ctx context.Context) (*dbtypes.CurrentUser, error) {
	v, err := u.cache.Get(ctx, UserCacheKey, func(ctx context.Context) (interface{}, error) {
		return u.resolver.Resolve(ctx)
	})
	if err != nil {
		return nil, err
	}
	user, _ := v.(*dbtypes.CurrentUser)
	return user, nil
}

func (u *WebUI) posts(ctx context.Context) ([]*dbtypes.Post, error) {
	v, err := u.cache.Get(ctx, PostsCacheKey, func(ctx context.Context) (interface{}, error) {
		return u.db.ListPosts(ctx)
	})
	if err != nil {
		return nil, err
	}
	posts, _ := v.([]*dbtypes.Post)
	return posts, nil
}

// requireEmployee loads the signed-in user and checks that they may view
// the employee area.  On failure it writes the response itself and
// returns nil.
func (u *WebUI) requireEmployee(w http.ResponseWriter, r *http.Request) *dbtypes.CurrentUser {
	user, err := u.currentUser(r.Context())
	if err != nil {
		glog.Errorf("Error while getting signed-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return nil
	}
	if !authz.CapabilitiesForUser(user).ViewEmployeeArea {
		http.Redirect(w, r, "/log-in", http.StatusFound)
		return nil
	}
	return user
}

func (u *WebUI) requireAdmin(w http.ResponseWriter, r *http.Request) *dbtypes.CurrentUser {
	user, err := u.currentUser(r.Context())
	if err != nil {
		glog.Errorf("Error while getting signed-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return nil
	}
	if !authz.CapabilitiesForUser(user).ViewAdminArea {
		if user == nil {
			http.Redirect(w, r, "/log-in", http.StatusFound)
		} else {
			http.Redirect(w, r, "/", http.StatusFound)
		}
		return nil
	}
	return user
}

func render(w http.ResponseWriter, tmpl *template.Template, params interface{}) {
	content := bytes.Buffer{}
	if err := tmpl.Execute(&content, params); err != nil {
		glog.Errorf("Error while executing template: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if _, err := io.Copy(w, &content); err != nil {
		// It's too late to write an error to the HTTP response.
		glog.Errorf("Error while writing output: %v", err)
	}
}

// homeHandler sends signed-in users to the area their role grants, and
// shows the landing page to everyone else.
func (u *WebUI) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	user, err := u.currentUser(r.Context())
	if err != nil {
		glog.Errorf("Error while getting signed-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	switch authz.RouteForUser(user) {
	case authz.RouteAdmin:
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	case authz.RouteEmployee:
		http.Redirect(w, r, "/employee", http.StatusFound)
		return
	}

	params := &uitemplates.HomeParams{}
	if user != nil {
		params.LoggedIn = true
		params.Username = user.Username
	}

	render(w, uitemplates.HomeTemplate, params)
}

func (u *WebUI) logInHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/log-in" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user, err := u.currentUser(ctx)
	if err != nil {
		glog.Errorf("Error while getting signed-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if user != nil {
		// Already signed in.  Send them back home.
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		form := &forms.SignIn{
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
		}
		if errs := form.Validate(); !errs.Ok() {
			render(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{FieldErrors: errs})
			return
		}

		account, err := u.identity.SignIn(ctx, form.Email, form.Password)
		if errors.Is(err, backend.ErrUnknownUserOrWrongPassword) {
			render(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{UserError: "Unknown user or wrong password"})
			return
		}
		if err != nil {
			glog.Errorf("Error while signing in %q: %v", form.Email, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		current, err := u.resolver.Enrich(ctx, account)
		if err != nil {
			glog.Errorf("Error while loading user document for %q: %v", form.Email, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		u.cache.Set(UserCacheKey, current)

		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	render(w, uitemplates.LogInTemplate, &uitemplates.LogInParams{})
}

func (u *WebUI) registerHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/register" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user, err := u.currentUser(ctx)
	if err != nil {
		glog.Errorf("Error while getting signed-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if user != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		form := &forms.SignUp{
			Username:        r.PostForm.Get("username"),
			Email:           r.PostForm.Get("email"),
			Password:        r.PostForm.Get("password"),
			PasswordConfirm: r.PostForm.Get("password-confirm"),
			Role:            r.PostForm.Get("role"),
			PrivacyPolicy:   r.PostForm.Get("privacy-policy") == "true",
		}
		if errs := form.Validate(); !errs.Ok() {
			render(w, uitemplates.RegisterTemplate, &uitemplates.RegisterParams{FieldErrors: errs, AdminAllowed: true})
			return
		}

		account, err := u.identity.CreateAccount(ctx, form.Email, form.Password)
		if errors.Is(err, backend.ErrEmailAlreadyRegistered) {
			render(w, uitemplates.RegisterTemplate, &uitemplates.RegisterParams{UserError: "That email is already registered", AdminAllowed: true})
			return
		}
		if err != nil {
			glog.Errorf("Error while creating account for %q: %v", form.Email, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		if err := u.identity.UpdateDisplayName(ctx, form.Username); err != nil {
			glog.Errorf("Error while setting display name for %q: %v", form.Email, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		if err := u.db.SetUser(ctx, account.UID, &dbtypes.User{
			Role:     form.Role,
			Username: form.Username,
			Email:    form.Email,
		}); err != nil {
			glog.Errorf("Error while storing user document for %q: %v", form.Email, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		current, err := u.resolver.Enrich(ctx, account)
		if err != nil {
			glog.Errorf("Error while loading user document for %q: %v", form.Email, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		u.cache.Set(UserCacheKey, current)

		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	render(w, uitemplates.RegisterTemplate, &uitemplates.RegisterParams{AdminAllowed: true})
}

func (u *WebUI) logOutHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/log-out" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if err := u.identity.SignOut(r.Context()); err != nil && !errors.Is(err, backend.ErrNotSignedIn) {
		glog.Errorf("Error while signing out: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	u.cache.Set(UserCacheKey, (*dbtypes.CurrentUser)(nil))

	http.Redirect(w, r, "/", http.StatusFound)
}

func (u *WebUI) profileHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/profile" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user, err := u.currentUser(ctx)
	if err != nil {
		glog.Errorf("Error while getting signed-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Redirect(w, r, "/log-in", http.StatusFound)
		return
	}

	params := &uitemplates.ProfileParams{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		PhotoURL: user.PhotoURL,
	}

	if r.Method == http.MethodPost {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			glog.Errorf("Error while parsing multipart form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		form := &forms.EditProfile{Username: r.PostForm.Get("username")}
		if errs := form.Validate(); !errs.Ok() {
			params.FieldErrors = errs
			render(w, uitemplates.ProfileTemplate, params)
			return
		}

		if err := u.identity.UpdateDisplayName(ctx, form.Username); err != nil {
			glog.Errorf("Error while updating display name: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		if err := u.db.SetUser(ctx, user.UID, &dbtypes.User{
			Role:     user.Role,
			Username: form.Username,
			Email:    user.Email,
		}); err != nil {
			glog.Errorf("Error while storing user document: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		photoURL := user.PhotoURL
		if headers := r.MultipartForm.File["photo"]; len(headers) > 0 {
			file, err := headers[0].Open()
			if err != nil {
				glog.Errorf("Error while opening uploaded photo %q: %v", headers[0].Filename, err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
			defer file.Close()

			photoURL, err = u.db.UploadProfilePhoto(ctx, user.UID, dblayer.ImageUpload{Name: headers[0].Filename, Data: file})
			if err != nil {
				glog.Errorf("Error while uploading profile photo: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}

			if err := u.identity.UpdatePhotoURL(ctx, photoURL); err != nil {
				glog.Errorf("Error while updating photo URL: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
		}

		// Replace the cached user rather than mutating it in place.
		updated := *user
		updated.Username = form.Username
		updated.DisplayName = form.Username
		updated.PhotoURL = photoURL
		u.cache.Set(UserCacheKey, &updated)

		params.Username = form.Username
		params.PhotoURL = photoURL
		params.Saved = true
	}

	render(w, uitemplates.ProfileTemplate, params)
}

func (u *WebUI) blobHandler(w http.ResponseWriter, r *http.Request) {
	data, ok := u.blobs.Blob(r.URL.Path)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if _, err := w.Write(data); err != nil {
		glog.Errorf("Error while writing blob: %v", err)
	}
}
