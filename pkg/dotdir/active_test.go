package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tutor/pkg/dotdir"
)

var _ = Describe("dotdir.Manager active conversation", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		m = dotdir.NewManager()
	})

	Describe("LoadActive", func() {
		It("returns nil when nothing is active", func() {
			active, err := m.LoadActive(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeNil())
		})

		It("loads a saved pointer", func() {
			data := `{"sessionId":"session_1","title":"Limits","model":"glm-4.6v-Flash","updatedAt":"2025-01-02T03:04:05Z"}`
			Expect(os.WriteFile(filepath.Join(tmpDir, "active.json"), []byte(data), 0o600)).To(Succeed())

			active, err := m.LoadActive(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(active.SessionID).To(Equal("session_1"))
			Expect(active.Title).To(Equal("Limits"))
			Expect(active.Model).To(Equal("glm-4.6v-Flash"))
			Expect(active.UpdatedAt).To(Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
		})

		It("treats a pointer without a session id as empty", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "active.json"), []byte(`{"title":"x"}`), 0o600)).To(Succeed())

			active, err := m.LoadActive(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeNil())
		})

		It("returns error for invalid JSON", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "active.json"), []byte("not json"), 0o600)).To(Succeed())

			active, err := m.LoadActive(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(active).To(BeNil())
		})
	})

	Describe("SaveActive", func() {
		It("round trips through disk", func() {
			Expect(m.SaveActive(&dotdir.ActiveConversation{SessionID: "abc", Title: "Derivatives"}, tmpDir)).To(Succeed())

			loaded, err := m.LoadActive(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.SessionID).To(Equal("abc"))
			Expect(loaded.Title).To(Equal("Derivatives"))
		})

		It("rejects a nil or empty pointer", func() {
			Expect(m.SaveActive(nil, tmpDir)).To(HaveOccurred())
			Expect(m.SaveActive(&dotdir.ActiveConversation{}, tmpDir)).To(HaveOccurred())
		})
	})

	Describe("ClearActive", func() {
		It("removes the pointer", func() {
			Expect(m.SaveActive(&dotdir.ActiveConversation{SessionID: "abc"}, tmpDir)).To(Succeed())
			Expect(m.ClearActive(tmpDir)).To(Succeed())

			_, err := os.Stat(filepath.Join(tmpDir, "active.json"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("is a no-op when nothing is active", func() {
			Expect(m.ClearActive(tmpDir)).To(Succeed())
		})
	})
})
