//go:build mage
// +build mage

package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var Default = Test

type Pi mg.Namespace

const (
	binName    = "sysstat"
	configName = "sysstat.yaml"
	piBuildDir = "bin/pi"
)

// Runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Builds the server and CLI for the host platform into bin/.
func Build() error {
	if err := sh.RunV("go", "build", "-o", filepath.Join("bin", binName), "./cmd"); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", filepath.Join("bin", binName+"-cli"), "./cmd/cli")
}

// Cross-compiles the server for the Raspberry Pi (linux/arm64).
func (Pi) Build() error {
	fmt.Println("Building for linux/arm64...")
	env := map[string]string{"GOOS": "linux", "GOARCH": "arm64"}
	return sh.RunWithV(env, "go", "build", "-o", filepath.Join(piBuildDir, binName), "./cmd")
}

// Copies the Pi build to ~/sysstat on the host over SSH. A sysstat.yaml in the
// working directory is copied alongside the binary.
func (Pi) Deploy(host, username string) error {
	mg.Deps(Pi.Build)

	target := username + "@" + host
	dir := remoteDir(username)
	if err := sh.Run("ssh", target, "mkdir -p", dir); err != nil {
		return fmt.Errorf("failed to create %s on host: %w", dir, err)
	}

	files := []string{filepath.Join(piBuildDir, binName)}
	if hasLocalConfig() {
		files = append(files, configName)
	}
	for _, f := range files {
		fmt.Printf("Copying %s to %s:%s\n", f, target, dir)
		if err := sh.Run("scp", f, target+":"+dir+"/"); err != nil {
			return fmt.Errorf("failed to copy %s to host: %w", f, err)
		}
	}
	return nil
}

// Deploys and runs the server on the Pi, streaming its output. Ctrl-C sends
// SIGTERM to the remote process; a second Ctrl-C kills it.
func (Pi) Start(host, username string) error {
	mg.Deps(mg.F(Pi.Deploy, host, username))

	client, err := dialSSH(username, host)
	if err != nil {
		return fmt.Errorf("failed to create SSH client: %w", err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()
	session.Stdout = os.Stdout
	session.Stderr = os.Stderr

	cmd := remoteDir(username) + "/" + binName
	if hasLocalConfig() {
		cmd += " -config " + remoteDir(username) + "/" + configName
	}
	if err := session.Start(cmd); err != nil {
		return fmt.Errorf("failed to start %s on host: %w", binName, err)
	}

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go forwardSignals(session, sigs)

	var exitErr *ssh.ExitError
	switch err := session.Wait(); {
	case err == nil:
		return nil
	case errors.As(err, &exitErr) && (exitErr.ExitStatus() == 130 || exitErr.ExitStatus() == 143):
		fmt.Println("Server stopped by signal")
		return nil
	case errors.As(err, &exitErr):
		return fmt.Errorf("server exited with status %d", exitErr.ExitStatus())
	default:
		return fmt.Errorf("failed waiting for server: %w", err)
	}
}

func forwardSignals(session *ssh.Session, sigs <-chan os.Signal) {
	<-sigs
	fmt.Println("Stopping server...")
	_ = session.Signal(ssh.SIGTERM)
	<-sigs
	fmt.Println("Killing server...")
	_ = session.Signal(ssh.SIGKILL)
	session.Close()
}

// Removes the Pi build output.
func (Pi) Clean() error {
	return os.RemoveAll(piBuildDir)
}

func remoteDir(username string) string {
	return "/home/" + username + "/sysstat"
}

func hasLocalConfig() bool {
	_, err := os.Stat(configName)
	return err == nil
}

// dialSSH authenticates with the keys held by the local SSH agent.
func dialSSH(user, host string) (*ssh.Client, error) {
	var auth []ssh.AuthMethod
	if conn, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK")); err == nil {
		if signers, err := agent.NewClient(conn).Signers(); err == nil {
			auth = append(auth, ssh.PublicKeys(withSHA2(signers)...))
		}
	}
	if len(auth) == 0 {
		fmt.Println("No SSH agent keys found")
	}

	addr := net.JoinHostPort(host, "22")
	fmt.Println("Dialing", addr)
	return ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // dev only
	})
}

// withSHA2 lets RSA keys sign with rsa-sha2-* so newer sshd accepts them.
func withSHA2(signers []ssh.Signer) []ssh.Signer {
	out := make([]ssh.Signer, 0, len(signers))
	for _, s := range signers {
		as, ok := s.(ssh.AlgorithmSigner)
		if !ok || s.PublicKey().Type() != ssh.KeyAlgoRSA {
			out = append(out, s)
			continue
		}
		ms, err := ssh.NewSignerWithAlgorithms(as, []string{ssh.KeyAlgoRSASHA256, ssh.KeyAlgoRSASHA512, ssh.KeyAlgoRSA})
		if err != nil {
			out = append(out, s)
			continue
		}
		out = append(out, ms)
	}
	return out
}
