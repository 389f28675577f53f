package session_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tutor/pkg/api"
	"github.com/papercomputeco/tutor/pkg/session"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		mgr    *session.Manager
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		GinkgoT().Setenv(session.TokenEnvVar, "")

		var err error
		mgr, err = session.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("targets session.toml in the override directory", func() {
		Expect(mgr.GetTarget()).To(Equal(filepath.Join(tmpDir, "session.toml")))
	})

	It("returns ErrNoSession before login", func() {
		_, err := mgr.Current()
		Expect(err).To(MatchError(session.ErrNoSession))
	})

	It("round trips a login", func() {
		s := api.Session{Token: "tok", UserID: 42, Username: "lin"}
		Expect(mgr.Login(s)).To(Succeed())

		got, err := mgr.Current()
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(s))
	})

	It("writes the file with owner-only permissions", func() {
		Expect(mgr.Login(api.Session{Token: "tok"})).To(Succeed())

		info, err := os.Stat(mgr.GetTarget())
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
	})

	It("refuses to store a session without a token", func() {
		Expect(mgr.Login(api.Session{Username: "lin"})).NotTo(Succeed())
	})

	It("forgets the session on logout", func() {
		Expect(mgr.Login(api.Session{Token: "tok"})).To(Succeed())
		Expect(mgr.Logout()).To(Succeed())

		_, err := mgr.Current()
		Expect(err).To(MatchError(session.ErrNoSession))
		Expect(mgr.Logout()).To(Succeed())
	})

	It("prefers the token from the environment", func() {
		Expect(mgr.Login(api.Session{Token: "stored"})).To(Succeed())
		GinkgoT().Setenv(session.TokenEnvVar, "from-env")

		got, err := mgr.Current()
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Token).To(Equal("from-env"))
	})

	It("rejects a malformed file", func() {
		Expect(os.WriteFile(mgr.GetTarget(), []byte("[session"), 0o600)).To(Succeed())

		_, err := mgr.Current()
		Expect(err).To(HaveOccurred())
		Expect(err).NotTo(MatchError(session.ErrNoSession))
	})

	It("rejects an unknown version", func() {
		Expect(os.WriteFile(mgr.GetTarget(), []byte("version = 3\n[session]\ntoken = \"t\"\n"), 0o600)).To(Succeed())

		_, err := mgr.Current()
		Expect(err).To(MatchError(ContainSubstring("unsupported session version 3")))
	})

	It("treats a stored session without a token as logged out", func() {
		Expect(os.WriteFile(mgr.GetTarget(), []byte("version = 0\n[session]\nusername = \"lin\"\n"), 0o600)).To(Succeed())

		_, err := mgr.Current()
		Expect(err).To(MatchError(session.ErrNoSession))
	})
})
