package orgchart_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/internal/orgchart"
	"github.com/frahmantamala/salesdesk/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Org Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		service := orgchart.NewService(newSQLiteStore(), &recordingPublisher{}, quietLogger(), testOptions())
		_, err := service.Seed(tenantCtx("acme"), chain())
		Expect(err).NotTo(HaveOccurred())

		handler := orgchart.NewHandler(transport.NewBaseHandler(quietLogger()), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := internal.ContextWithPrincipal(r.Context(), &internal.Principal{Subject: "tester", TenantID: "acme", Role: "Admin"})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
		router.Get("/org/users", handler.ListUsers)
		router.Get("/org/tree", handler.GetTree)
		router.Get("/org/audit-logs", handler.GetAuditLogs)
		router.Post("/org/users/quick-add", handler.QuickAdd)
		router.Put("/org/users/{id}", handler.SaveUser)
		router.Delete("/org/users/{id}", handler.DeleteUser)
		router.Post("/org/users/{id}/move", handler.MoveUser)
		router.Post("/org/drop", handler.Drop)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	errorCode := func(w *httptest.ResponseRecorder) internal.ErrorCode {
		var resp struct {
			Error struct {
				Code    internal.ErrorCode `json:"code"`
				Message string             `json:"message"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		return resp.Error.Code
	}

	It("should handle GET /org/users", func() {
		w := do(http.MethodGet, "/org/users", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var resp orgchart.UsersResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(ids(resp.Users)).To(Equal([]string{"a", "b", "c"}))
	})

	It("should handle GET /org/tree", func() {
		w := do(http.MethodGet, "/org/tree", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp orgchart.TreeResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Roots).To(HaveLen(1))
		Expect(resp.Roots[0].Children[0].User.ID).To(Equal("b"))
	})

	It("should create a quick-added user with the editor flag", func() {
		w := do(http.MethodPost, "/org/users/quick-add", map[string]string{"role": "IT"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp orgchart.QuickAddResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.OpenEditor).To(BeTrue())
		Expect(resp.User).NotTo(BeNil())
		Expect(resp.User.Permissions).To(Equal(orgchart.RoleIT))
		Expect(resp.User.ParentID).To(HaveValue(Equal("a")))
		Expect(resp.Entry).NotTo(BeNil())
		Expect(resp.Entry.Action).To(Equal(orgchart.ActionCreate))
	})

	It("should reject an unknown role", func() {
		w := do(http.MethodPost, "/org/users/quick-add", map[string]string{"role": "CEO"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeValidationFailed))
	})

	It("should answer a cyclic move with 409", func() {
		w := do(http.MethodPost, "/org/users/a/move", map[string]interface{}{"parent_id": "c"})
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeInvalidHierarchyMove))
	})

	It("should move to root with a null parent", func() {
		w := do(http.MethodPost, "/org/users/c/move", map[string]interface{}{"parent_id": nil})
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp orgchart.MutationResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.User.ParentID).To(BeNil())
		Expect(resp.Entry.Action).To(Equal(orgchart.ActionMove))
	})

	It("should report an ignored self drop", func() {
		w := do(http.MethodPost, "/org/drop", map[string]interface{}{
			"data_transfer": map[string]string{"userId": "b"},
			"target_id":     "b",
		})
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp orgchart.MutationResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Ignored).To(BeTrue())
		Expect(resp.User).To(BeNil())
	})

	It("should update a user via PUT", func() {
		w := do(http.MethodPut, "/org/users/b", map[string]interface{}{
			"first_name":  "Bea",
			"last_name":   "Last-b",
			"permissions": "Manager",
		})
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp orgchart.MutationResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Entry.Action).To(Equal(orgchart.ActionUpdate))
	})

	It("should create a user via PUT on a new id", func() {
		w := do(http.MethodPut, "/org/users/d", map[string]interface{}{
			"first_name":  "Dee",
			"permissions": "VP",
			"parent_id":   "a",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))
	})

	It("should reject an invalid email", func() {
		w := do(http.MethodPut, "/org/users/b", map[string]interface{}{
			"email":       "not-an-email",
			"permissions": "User",
		})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should delete and return the promoted reports", func() {
		w := do(http.MethodDelete, "/org/users/b", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp orgchart.MutationResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(ids(resp.Promoted)).To(Equal([]string{"c"}))
	})

	It("should 404 on deleting an unknown user", func() {
		w := do(http.MethodDelete, "/org/users/ghost", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeUserNotFound))
	})

	It("should list audit logs newest first and validate the limit", func() {
		w := do(http.MethodGet, "/org/audit-logs?limit=2", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp orgchart.AuditLogsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.AuditLogs).To(HaveLen(2))
		Expect(resp.Limit).To(Equal(2))
		Expect(resp.AuditLogs[0].Details).To(ContainSubstring("First-c"))

		w = do(http.MethodGet, "/org/audit-logs?limit=abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
