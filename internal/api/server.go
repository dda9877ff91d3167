package api

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/reportdesk/internal/auth"
	"github.com/reportdesk/internal/config"
	"github.com/reportdesk/internal/links"
	"github.com/reportdesk/internal/notify"
	"github.com/reportdesk/internal/report"
)

const directoryPageSize = 10

type Server struct {
	cfg      *config.Config
	store    *links.Store
	sessions *auth.Manager
	composer *report.Composer
	notifier *notify.Notifier
	router   *gin.Engine
}

func NewServer(cfg *config.Config, store *links.Store, sessions *auth.Manager,
	composer *report.Composer, notifier *notify.Notifier) *Server {

	server := &Server{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		composer: composer,
		notifier: notifier,
		router:   gin.Default(),
	}

	server.router.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	})
	server.router.LoadHTMLGlob("templates/*.html")
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// Public routes
	s.router.GET("/", s.listLinks)
	s.router.GET("/spreadsheets", s.listLinks)
	s.router.GET("/admin/login", s.loginForm)
	s.router.POST("/admin/login", s.login)
	s.router.GET("/admin/logout", s.logout)
	s.router.GET("/swachatha", s.reportForm)
	s.router.POST("/generate_pdf", s.generatePDF)

	// Admin-only routes
	admin := s.router.Group("/admin")
	admin.Use(s.sessions.RequireAdmin())
	admin.GET("/add", s.addLinkForm)
	admin.POST("/add", s.addLink)
	admin.POST("/bulk_upload", s.bulkUpload)
}

func (s *Server) Start(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

// Router exposes the engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) listLinks(c *gin.Context) {
	page := 1
	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}

	result := s.store.List(page, directoryPageSize)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"page":    result,
		"isAdmin": s.sessions.IsAdmin(c),
	})
}

func (s *Server) loginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if err := s.sessions.Login(c, username, password); err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{"error": "Invalid credentials"})
		return
	}
	c.Redirect(http.StatusFound, "/admin/add")
}

func (s *Server) logout(c *gin.Context) {
	s.sessions.Logout(c)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) addLinkForm(c *gin.Context) {
	s.renderAddForm(c, "", "")
}

func (s *Server) addLink(c *gin.Context) {
	link, err := s.store.Add(c.PostForm("name"), c.PostForm("category"), c.PostForm("url"))
	switch {
	case errors.Is(err, links.ErrValidation):
		s.renderAddForm(c, "", "All fields are required.")
	case errors.Is(err, links.ErrDuplicateURL):
		s.renderAddForm(c, "", "A link with this URL already exists.")
	case err != nil:
		log.WithError(err).Error("failed to add link")
		s.renderAddForm(c, "", "Could not save the link, please try again.")
	default:
		s.notifier.LinkAdded(link)
		s.renderAddForm(c, fmt.Sprintf("Added %q.", link.Name), "")
	}
}

func (s *Server) bulkUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		s.renderAddForm(c, "", "Choose a CSV file to upload.")
		return
	}

	f, err := file.Open()
	if err != nil {
		log.WithError(err).Error("failed to open bulk upload")
		s.renderAddForm(c, "", "Could not read the uploaded file.")
		return
	}
	defer f.Close()

	rows, err := links.ReadCSV(f)
	if err != nil {
		s.renderAddForm(c, "", "The file is not a valid CSV.")
		return
	}

	added, skipped, err := s.store.BulkAdd(rows)
	switch {
	case errors.Is(err, links.ErrDuplicateURL):
		s.renderAddForm(c, "", fmt.Sprintf(
			"Import rolled back: a URL in the file already exists. %d rows were skipped during validation.", skipped))
	case err != nil:
		log.WithError(err).Error("bulk upload failed")
		s.renderAddForm(c, "", "Import failed, no rows were added.")
	default:
		s.notifier.BulkImportDone(added, skipped)
		s.renderAddForm(c, fmt.Sprintf("Imported %d links, skipped %d invalid rows.", added, skipped), "")
	}
}

func (s *Server) renderAddForm(c *gin.Context, message, errMsg string) {
	result := s.store.List(1, directoryPageSize)
	c.HTML(http.StatusOK, "add_link.html", gin.H{
		"page":    result,
		"message": message,
		"error":   errMsg,
	})
}

func (s *Server) reportForm(c *gin.Context) {
	s.renderReportForm(c, "")
}

func (s *Server) renderReportForm(c *gin.Context, errMsg string) {
	c.HTML(http.StatusOK, "report_form.html", gin.H{
		"activities": s.cfg.Report.Activities,
		"regions":    s.cfg.Report.Regions,
		"error":      errMsg,
	})
}

func (s *Server) generatePDF(c *gin.Context) {
	activity := c.PostForm("activity")
	region := c.PostForm("region")
	warehouse := c.PostForm("warehouse")

	if !s.warehouseInRegion(region, warehouse) {
		s.renderReportForm(c, fmt.Sprintf("%s is not a warehouse in the %s region.", warehouse, region))
		return
	}

	req := report.Request{
		Activity:  activity,
		Region:    region,
		Warehouse: warehouse,
		DateRaw:   c.PostForm("date"),
		Details:   c.PostForm("activity_details"),
	}

	form, err := c.MultipartForm()
	if err == nil {
		for _, header := range form.File["images"] {
			if header.Filename == "" {
				continue
			}
			f, err := header.Open()
			if err != nil {
				c.String(http.StatusInternalServerError, "failed to read uploaded image")
				return
			}
			defer f.Close()
			req.Images = append(req.Images, report.Upload{Filename: header.Filename, Reader: f})
		}
	}

	buf, err := s.composer.Compose(req)
	if err != nil {
		log.WithError(err).Error("report generation failed")
		c.String(http.StatusInternalServerError, "failed to generate report")
		return
	}

	if c.PostForm("email_report") != "" {
		s.notifier.MailReport(fmt.Sprintf("Activity report: %s (%s)", activity, warehouse), buf.Bytes())
	}

	c.Header("Content-Disposition", `attachment; filename="report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) warehouseInRegion(region, warehouse string) bool {
	for _, w := range s.cfg.Report.Regions[region] {
		if w == warehouse {
			return true
		}
	}
	return false
}
