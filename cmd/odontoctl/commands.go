package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/repository"
)

// errUsage — неизвестная команда или недостающие аргументы.
var errUsage = errors.New("uso incorreto")

// errBackend — команда недоступна для выбранного backend.
var errBackend = errors.New("comando indisponível para este backend")

// run выполняет команду name с аргументами args.
func (a *app) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "casos":
		return a.listCases(ctx, args)
	case "vitimas":
		return a.listVictims(ctx, args)
	case "criar-caso":
		return a.createCase(ctx, args)
	case "status-caso":
		return a.setCaseStatus(ctx, args)
	case "remover-caso":
		return a.removeCase(ctx, args)
	case "dashboard":
		return a.dashboard(ctx)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "reset":
		return a.reset(ctx)
	default:
		return fmt.Errorf("comando %q: %w", name, errUsage)
	}
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) listCases(ctx context.Context, args []string) error {
	fs := newFlags("casos")
	owner := fs.String("usuario", "", "ID do usuário criador")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	cases, err := a.set.Cases.List(ctx, repository.Filter{OwnerID: *owner})
	if err != nil {
		return err
	}
	return a.print(cases)
}

func (a *app) listVictims(ctx context.Context, args []string) error {
	fs := newFlags("vitimas")
	caseID := fs.String("caso", "", "ID do caso")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	victims, err := a.set.Victims.List(ctx, repository.Filter{OwnerID: *caseID})
	if err != nil {
		return err
	}
	return a.print(victims)
}

func (a *app) createCase(ctx context.Context, args []string) error {
	fs := newFlags("criar-caso")
	title := fs.String("titulo", "", "título do caso")
	description := fs.String("descricao", "", "descrição")
	owner := fs.String("usuario", "", "ID do usuário criador")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	// В remote-режиме автор по умолчанию — пользователь сессии (подставит сервер)
	created, err := a.set.Cases.Create(ctx, model.Case{
		Title:         *title,
		Description:   *description,
		CreatorUserID: *owner,
	})
	if err != nil {
		return err
	}
	return a.print(created)
}

func (a *app) setCaseStatus(ctx context.Context, args []string) error {
	fs := newFlags("status-caso")
	id := fs.String("id", "", "ID do caso")
	status := fs.String("status", "", "Em andamento | Finalizado | Arquivado")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *id == "" || *status == "" {
		return errUsage
	}

	s := model.CaseStatus(*status)
	updated, err := a.set.Cases.Update(ctx, *id, model.CasePatch{Status: &s})
	if err != nil {
		return err
	}
	return a.print(updated)
}

func (a *app) removeCase(ctx context.Context, args []string) error {
	fs := newFlags("remover-caso")
	id := fs.String("id", "", "ID do caso")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *id == "" {
		return errUsage
	}
	return a.set.Cases.Delete(ctx, *id)
}

func (a *app) dashboard(ctx context.Context) error {
	snap, err := a.summarizer.Summarize(ctx)
	if err != nil {
		return err
	}
	return a.print(snap)
}

func (a *app) login(ctx context.Context, args []string) error {
	if a.client == nil {
		return errBackend
	}
	fs := newFlags("login")
	email := fs.String("email", "", "e-mail")
	password := fs.String("senha", "", "senha")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if strings.TrimSpace(*email) == "" || *password == "" {
		return errUsage
	}

	res, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	return a.print(res.User)
}

func (a *app) logout(ctx context.Context) error {
	if a.client == nil {
		return errBackend
	}
	return a.client.Logout(ctx)
}

func (a *app) reset(ctx context.Context) error {
	if a.adapter == nil {
		return errBackend
	}
	if err := a.adapter.Reset(ctx, a.keys); err != nil {
		return err
	}
	a.logger.Info("Коллекции сброшены")
	return nil
}

// print печатает значение в stdout как JSON с отступами.
func (a *app) print(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
