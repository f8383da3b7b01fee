package test

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"go.uber.org/zap"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/avdeev/ordertrack/internal"
	mock_internal "github.com/avdeev/ordertrack/internal/mock"
	"github.com/avdeev/ordertrack/internal/model"
)

var _ = Describe("HTTP surface", func() {
	var (
		app   *fiber.App
		rep   *mock_internal.MockIRepository
		gate  *internal.TokenGate
		ctrl  *gomock.Controller
		token string
		tmp   string
	)

	request := func(method, target, body string, auth bool) *http.Response {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, target, reader)
		Expect(err).ShouldNot(HaveOccurred())
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if auth {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := app.Test(req)
		Expect(err).ShouldNot(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response) map[string]interface{} {
		raw, err := io.ReadAll(resp.Body)
		Expect(err).ShouldNot(HaveOccurred())

		out := map[string]interface{}{}
		Expect(json.Unmarshal(raw, &out)).Should(Succeed())
		return out
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())

		logger, err := zap.NewDevelopment()
		Expect(err).ShouldNot(HaveOccurred())

		var errTmp error
		tmp, errTmp = os.MkdirTemp("", "delivery")
		Expect(errTmp).ShouldNot(HaveOccurred())

		deliveryFile := filepath.Join(tmp, "delivery.csv")
		// a blank line and a ragged line, both of which the reader skips
		err = os.WriteFile(deliveryFile, []byte("1\tfree_shipping_from\t50\n\n3\tragged\n2\tcourier\tdhl\n"), 0o600)
		Expect(err).ShouldNot(HaveOccurred())

		rep = mock_internal.NewMockIRepository(ctrl)
		gate = internal.NewTokenGate("secret", "ordertrack", time.Hour)
		token, err = gate.IssueToken()
		Expect(err).ShouldNot(HaveOccurred())

		handlers := internal.NewHandlers(internal.NewService(rep), internal.NewOrderSchema(), deliveryFile, logger.Sugar())
		app = internal.NewRouter(handlers, gate)
	})

	AfterEach(func() {
		ctrl.Finish()
		Expect(os.RemoveAll(tmp)).Should(Succeed())
	})

	Context("authentication", func() {
		It("rejects any request without an Authorization header", func() {
			for _, target := range []string{"/order", "/order/1", "/delivery"} {
				resp := request(http.MethodGet, target, "", false)
				Expect(resp.StatusCode).Should(Equal(http.StatusUnauthorized))
			}
		})

		It("rejects a non-bearer scheme without verification", func() {
			req, err := http.NewRequest(http.MethodGet, "/order", nil)
			Expect(err).ShouldNot(HaveOccurred())
			req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

			resp, err := app.Test(req)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resp.StatusCode).Should(Equal(http.StatusForbidden))
		})

		It("rejects a token from another signer", func() {
			other := internal.NewTokenGate("wrong", "ordertrack", time.Hour)
			bad, err := other.IssueToken()
			Expect(err).ShouldNot(HaveOccurred())

			req, err := http.NewRequest(http.MethodGet, "/order", nil)
			Expect(err).ShouldNot(HaveOccurred())
			req.Header.Set("Authorization", "Bearer "+bad)

			resp, err := app.Test(req)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resp.StatusCode).Should(Equal(http.StatusForbidden))
		})
	})

	Context("create and read", func() {
		It("creates an order and reads it back", func() {
			date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			saved := model.Order{ID: 7, ProductName: "Widget", CreationDate: date, Status: "new"}

			rep.EXPECT().Save(gomock.Any(), model.Order{
				ProductName:  "Widget",
				CreationDate: date,
				Status:       "new",
			}).Return(int64(7), nil)
			rep.EXPECT().FindOneByID(gomock.Any(), int64(7)).Return(&saved, nil)

			resp := request(http.MethodPost, "/order",
				`{"productName":"Widget","creationDate":"2024-01-01","status":"new"}`, true)
			Expect(resp.StatusCode).Should(Equal(http.StatusCreated))

			body := decode(resp)
			Expect(body["message"]).Should(Equal("Order created"))
			Expect(body["id"]).Should(Equal(float64(7)))

			resp = request(http.MethodGet, "/order/7", "", true)
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))

			order := decode(resp)
			Expect(order["productName"]).Should(Equal("Widget"))
			Expect(order["status"]).Should(Equal("new"))
		})

		It("rejects a client-supplied id on create", func() {
			resp := request(http.MethodPost, "/order",
				`{"id":9,"productName":"Widget","creationDate":"2024-01-01","status":"new"}`, true)
			Expect(resp.StatusCode).Should(Equal(http.StatusBadRequest))
			Expect(decode(resp)["error"]).Should(Equal("Validation error"))
		})

		It("renders a missing order as null", func() {
			rep.EXPECT().FindOneByID(gomock.Any(), int64(404)).Return(nil, nil)

			resp := request(http.MethodGet, "/order/404", "", true)
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))

			raw, err := io.ReadAll(resp.Body)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(strings.TrimSpace(string(raw))).Should(Equal("null"))
		})

		It("handles a malformed id without crashing", func() {
			resp := request(http.MethodGet, "/order/not-an-id", "", true)
			Expect(resp.StatusCode).Should(Equal(http.StatusBadRequest))
		})
	})

	Context("listing", func() {
		It("returns every order for an empty query", func() {
			rep.EXPECT().Find(gomock.Any(), map[string]interface{}{}).Return([]model.Order{
				{ID: 1, ProductName: "Widget", Status: "new"},
				{ID: 2, ProductName: "Gadget", Status: "delivered"},
			}, nil)

			resp := request(http.MethodGet, "/order", "", true)
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))

			raw, err := io.ReadAll(resp.Body)
			Expect(err).ShouldNot(HaveOccurred())

			orders := []map[string]interface{}{}
			Expect(json.Unmarshal(raw, &orders)).Should(Succeed())
			Expect(orders).Should(HaveLen(2))
		})

		It("filters by status", func() {
			rep.EXPECT().Find(gomock.Any(), map[string]interface{}{"status": "delivered"}).
				Return([]model.Order{{ID: 2, Status: "delivered"}}, nil)

			resp := request(http.MethodGet, "/order?status=delivered", "", true)
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
		})

		It("rejects an invalid filter", func() {
			resp := request(http.MethodGet, "/order?status=lost", "", true)
			Expect(resp.StatusCode).Should(Equal(http.StatusBadRequest))
		})
	})

	Context("partial update", func() {
		It("merges a status change into an existing order", func() {
			rep.EXPECT().UpdateOneByID(gomock.Any(), int64(10), map[string]interface{}{"status": "packed"}).
				Return(true, nil)

			resp := request(http.MethodPatch, "/order/10", `{"status":"packed"}`, true)
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
			Expect(decode(resp)["message"]).Should(Equal("Order updated successfully"))
		})

		It("answers 404 for a nonexistent id", func() {
			rep.EXPECT().UpdateOneByID(gomock.Any(), int64(99), map[string]interface{}{"status": "packed"}).
				Return(false, nil)

			resp := request(http.MethodPatch, "/order/99", `{"status":"packed"}`, true)
			Expect(resp.StatusCode).Should(Equal(http.StatusNotFound))
			Expect(decode(resp)["error"]).Should(Equal("Order not found"))
		})

		It("rejects an empty update payload", func() {
			resp := request(http.MethodPatch, "/order/10", `{}`, true)
			Expect(resp.StatusCode).Should(Equal(http.StatusBadRequest))
		})

		It("rejects an update touching creationDate", func() {
			resp := request(http.MethodPatch, "/order/10", `{"creationDate":"2025-01-01"}`, true)
			Expect(resp.StatusCode).Should(Equal(http.StatusBadRequest))
		})
	})

	Context("method gating", func() {
		It("answers 405 for methods without a contract", func() {
			resp := request(http.MethodDelete, "/order/10", "", true)
			Expect(resp.StatusCode).Should(Equal(http.StatusMethodNotAllowed))
			Expect(decode(resp)["error"]).Should(Equal("Not allowed"))

			resp = request(http.MethodPut, "/order", "", true)
			Expect(resp.StatusCode).Should(Equal(http.StatusMethodNotAllowed))
		})
	})

	Context("delivery settings", func() {
		It("serves the parsed flat file", func() {
			resp := request(http.MethodGet, "/delivery", "", true)
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))

			raw, err := io.ReadAll(resp.Body)
			Expect(err).ShouldNot(HaveOccurred())

			settings := []model.DeliverySetting{}
			Expect(json.Unmarshal(raw, &settings)).Should(Succeed())
			Expect(settings).Should(Equal([]model.DeliverySetting{
				{ID: "1", SettingName: "free_shipping_from", SettingValue: "50"},
				{ID: "2", SettingName: "courier", SettingValue: "dhl"},
			}))
		})
	})
})
