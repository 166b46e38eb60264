// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vetclinic/vet-session/internal/container"
	"github.com/vetclinic/vet-session/internal/domain/entities"
	"github.com/vetclinic/vet-session/pkg/constants"
)

const (
	cmdSignIn      = "sign-in"
	cmdSignUp      = "sign-up"
	cmdSignOut     = "sign-out"
	cmdWhoAmI      = "whoami"
	cmdAvatar      = "avatar"
	cmdProfiles    = "profiles"
	cmdProfile     = "profile"
	cmdCustomers   = "customers"
	cmdCustomer    = "customer"
	cmdPets        = "pets"
	cmdPet         = "pet"
	cmdWatch       = "watch"
	cmdHealth      = "health"
	cmdCheckConfig = "check-config"
)

var (
	errUsage        = errors.New("usage error")
	errUnhealthy    = errors.New("session dependencies unhealthy")
	errNoBroadcast  = errors.New("watch requires broadcast: set BROADCAST_ENABLED=true or pass -broadcast")
	errMissingInput = errors.New("an -email or -employee identifier and a -password are required")
)

// app runs one command against a wired container
type app struct {
	c   *container.Container
	out io.Writer
	err io.Writer
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case cmdSignIn:
		return a.signIn(ctx, args)
	case cmdSignUp:
		return a.signUp(ctx, args)
	case cmdSignOut:
		return a.signOut(ctx)
	case cmdWhoAmI:
		return a.whoami(ctx)
	case cmdAvatar:
		return a.avatar(ctx, args)
	case cmdProfiles:
		return a.profiles(ctx, args)
	case cmdProfile:
		return a.profile(ctx, args)
	case cmdCustomers:
		return a.customers(ctx, args)
	case cmdCustomer:
		return a.customer(ctx, args)
	case cmdPets:
		return a.pets(ctx, args)
	case cmdPet:
		return a.pet(ctx, args)
	case cmdWatch:
		return a.watch(ctx)
	case cmdHealth:
		return a.health(ctx)
	case "":
		return fmt.Errorf("%w: no command given", errUsage)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.err)
	return fs
}

func (a *app) parseCredentials(name string, args []string) (entities.Credentials, error) {
	fs := a.newFlagSet(name)
	var creds entities.Credentials
	fs.StringVar(&creds.Email, "email", "", "email address")
	fs.StringVar(&creds.EmployeeNumber, "employee", "", "employee number")
	fs.StringVar(&creds.Password, "password", os.Getenv("VET_PASSWORD"), "password (or VET_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return creds, fmt.Errorf("%w: %s", errUsage, err.Error())
	}
	if creds.Identifier() == "" || creds.Password == "" {
		return creds, fmt.Errorf("%w: %s", errUsage, errMissingInput.Error())
	}
	return creds, nil
}

func (a *app) signIn(ctx context.Context, args []string) error {
	creds, err := a.parseCredentials(cmdSignIn, args)
	if err != nil {
		return err
	}
	if _, err := a.c.AuthService.SignIn(ctx, creds); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s\n", creds.Identifier())
	return nil
}

func (a *app) signUp(ctx context.Context, args []string) error {
	creds, err := a.parseCredentials(cmdSignUp, args)
	if err != nil {
		return err
	}
	resp, err := a.c.AuthService.SignUpEmployee(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}

func (a *app) signOut(ctx context.Context) error {
	if err := a.c.AuthService.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	state, err := a.c.StateProvider.GetAuthenticationState(ctx)
	if err != nil {
		return err
	}
	if !state.User.IsAuthenticated() {
		fmt.Fprintln(a.out, "anonymous")
		return nil
	}

	artifacts, err := a.c.AuthService.Artifacts(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "name:      %s\n", state.User.Name())
	fmt.Fprintf(a.out, "auth type: %s\n", state.User.AuthenticationType())
	fmt.Fprintf(a.out, "roles:     %s\n", strings.Join(state.User.Roles(), ", "))
	if name, ok := artifacts[constants.StoreKeyName]; ok {
		fmt.Fprintf(a.out, "display:   %s\n", name)
	}
	if avatar, ok := artifacts[constants.StoreKeyAvatar]; ok {
		fmt.Fprintf(a.out, "avatar:    %s\n", avatar)
	}
	for _, claim := range state.User.Claims() {
		if claim.Type == constants.ClaimTypeRole || claim.Type == constants.ClaimTypeName {
			continue
		}
		fmt.Fprintf(a.out, "claim:     %s\n", claim)
	}
	return nil
}

func (a *app) avatar(ctx context.Context, args []string) error {
	fs := a.newFlagSet(cmdAvatar)
	id := fs.String("id", "", "employee id (default: signed-in employee)")
	upload := fs.String("upload", "", "picture file to upload for the signed-in employee")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err.Error())
	}

	if *upload != "" {
		f, err := os.Open(*upload)
		if err != nil {
			return err
		}
		defer f.Close()

		avatar, err := a.c.AvatarService.Upload(ctx, filepath.Base(*upload), f)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, avatar.Path)
		return nil
	}

	var (
		avatar *entities.Avatar
		err    error
	)
	if *id == "" {
		avatar, err = a.c.AvatarService.GetMine(ctx)
	} else {
		avatar, err = a.c.AvatarService.GetByID(ctx, *id)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, avatar.Path)
	return nil
}

func (a *app) profiles(ctx context.Context, args []string) error {
	fs := a.newFlagSet(cmdProfiles)
	offset := fs.Int("offset", 0, "first profile")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err.Error())
	}

	page, err := a.c.ProfileService.List(ctx, *offset, *limit)
	if err != nil {
		return err
	}
	return a.printJSON(page)
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := a.newFlagSet(cmdProfile)
	id := fs.String("id", "", "employee id to show")
	name := fs.String("name", "", "new first name for the signed-in employee")
	lastName := fs.String("last-name", "", "new last name for the signed-in employee")
	phone := fs.String("phone", "", "new phone number for the signed-in employee")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err.Error())
	}

	if *name != "" || *lastName != "" || *phone != "" {
		updated, err := a.c.ProfileService.UpdateMine(ctx, entities.EmployeeProfile{
			Name:        *name,
			LastName:    *lastName,
			PhoneNumber: *phone,
		})
		if err != nil {
			return err
		}
		return a.printJSON(updated)
	}

	if *id == "" {
		return fmt.Errorf("%w: profile needs -id or an update flag", errUsage)
	}
	profile, err := a.c.ProfileService.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	return a.printJSON(profile)
}

func (a *app) customers(ctx context.Context, args []string) error {
	fs := a.newFlagSet(cmdCustomers)
	offset := fs.Int("offset", 0, "first customer")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err.Error())
	}

	page, err := a.c.CustomerService.List(ctx, *offset, *limit)
	if err != nil {
		return err
	}
	return a.printJSON(page)
}

// customer prints the profile and the resolved avatar of one customer
func (a *app) customer(ctx context.Context, args []string) error {
	fs := a.newFlagSet(cmdCustomer)
	id := fs.String("id", "", "customer id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err.Error())
	}
	if *id == "" {
		return fmt.Errorf("%w: customer needs -id", errUsage)
	}

	profile, err := a.c.CustomerService.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	avatar, err := a.c.CustomerAvatarService.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	return a.printJSON(struct {
		Profile *entities.CustomerProfile `json:"profile"`
		Avatar  string                    `json:"avatar"`
	}{profile, avatar.Path})
}

func (a *app) pets(ctx context.Context, args []string) error {
	fs := a.newFlagSet(cmdPets)
	customerID := fs.String("customer", "", "only pets of this customer")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err.Error())
	}

	var (
		page *entities.ListResponse[entities.PetProfile]
		err  error
	)
	if *customerID == "" {
		page, err = a.c.PetService.List(ctx)
	} else {
		page, err = a.c.PetService.ListByCustomer(ctx, *customerID)
	}
	if err != nil {
		return err
	}
	return a.printJSON(page)
}

func (a *app) pet(ctx context.Context, args []string) error {
	fs := a.newFlagSet(cmdPet)
	id := fs.String("id", "", "pet id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err.Error())
	}
	if *id == "" {
		return fmt.Errorf("%w: pet needs -id", errUsage)
	}

	pet, err := a.c.PetService.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	return a.printJSON(pet)
}

// watch prints one JSON line per broadcast event until ctx is cancelled
func (a *app) watch(ctx context.Context) error {
	if a.c.Broadcaster == nil {
		return errNoBroadcast
	}
	fmt.Fprintf(a.err, "watching %s (Ctrl+C to stop)\n", a.c.Broadcaster.Subject())

	err := a.c.Broadcaster.Listen(ctx, func(_ context.Context, event entities.SessionEvent) error {
		line, err := json.Marshal(event)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, string(line))
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) health(ctx context.Context) error {
	status := a.c.HealthService.CheckHealth(ctx)
	if err := a.printJSON(status); err != nil {
		return err
	}
	if status.Status == constants.StatusUnhealthy {
		return errUnhealthy
	}
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
