package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/f3rmion/fydkg/simulation"
	"github.com/f3rmion/fydkg/wire"
)

var (
	badProof     []uint
	corruptShare []string
	transitShare []string
	silent       []uint
	reportPath   string
	outDir       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a key generation among simulated participants",
	Long: `Run executes both rounds of the key generation among in-process
participants connected by an in-memory network, then checks that every
finished participant derived the same group key.

Faults can be injected to watch exclusion at work:

  fydkg run -t 3 -n 5 --corrupt-share 4:2
  fydkg run -t 3 -n 3 --corrupt-share-in-transit 2:1
  fydkg run -t 2 -n 4 --silent 3 --timeout 1s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	f := runCmd.Flags()
	f.Uint32P("threshold", "t", 2, "shares needed to reconstruct")
	f.Uint32P("participants", "n", 3, "number of participants")
	f.String("curve", "bjj", "curve (bjj, ed25519, secp256k1)")
	f.String("hasher", "sha256", "proof of knowledge hash (sha256, blake2b)")
	f.Duration("timeout", 5*time.Second, "barrier timeout")
	f.UintSliceVar(&badProof, "bad-proof", nil, "participants publishing an invalid proof")
	f.StringSliceVar(&corruptShare, "corrupt-share", nil, "from:to pairs of corrupted shares")
	f.StringSliceVar(&transitShare, "corrupt-share-in-transit", nil, "from:to pairs of shares corrupted on the wire only")
	f.UintSliceVar(&silent, "silent", nil, "participants that never send")
	f.StringVar(&reportPath, "report", "", "write a YAML report to this file (- for stdout)")
	f.StringVar(&outDir, "out", "", "directory receiving the key material of every participant")

	for _, name := range []string{"threshold", "participants", "curve", "hasher", "timeout"} {
		if err := viper.BindPFlag(name, f.Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", name, err))
		}
	}
}

func parseLink(s string) (uint32, uint32, error) {
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid share link %q, want from:to", s)
	}
	f, err := strconv.ParseUint(from, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid share link %q: %w", s, err)
	}
	t, err := strconv.ParseUint(to, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid share link %q: %w", s, err)
	}
	return uint32(f), uint32(t), nil
}

func index(flag string, v uint) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("invalid --%s participant %d", flag, v)
	}
	return uint32(v), nil
}

func faults() ([]simulation.Fault, error) {
	var out []simulation.Fault
	for _, v := range badProof {
		i, err := index("bad-proof", v)
		if err != nil {
			return nil, err
		}
		out = append(out, simulation.BadProof(i))
	}
	for _, link := range corruptShare {
		from, to, err := parseLink(link)
		if err != nil {
			return nil, err
		}
		out = append(out, simulation.CorruptShare(from, to))
	}
	for _, link := range transitShare {
		from, to, err := parseLink(link)
		if err != nil {
			return nil, err
		}
		out = append(out, simulation.CorruptShareInTransit(from, to))
	}
	for _, v := range silent {
		i, err := index("silent", v)
		if err != nil {
			return nil, err
		}
		out = append(out, simulation.Silent(i))
	}
	return out, nil
}

func execute(ctx context.Context, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, err := newGroup(viper.GetString("curve"))
	if err != nil {
		return err
	}
	h, err := newHasher(viper.GetString("hasher"))
	if err != nil {
		return err
	}
	fs, err := faults()
	if err != nil {
		return err
	}

	cfg := simulation.Config{
		Group:     g,
		Threshold: viper.GetUint32("threshold"),
		Total:     viper.GetUint32("participants"),
		Timeout:   viper.GetDuration("timeout"),
		Hasher:    h,
		Faults:    fs,
	}
	report, runErr := simulation.Run(ctx, cfg)
	if report == nil {
		return runErr
	}

	summary := newRunReport(cfg, viper.GetString("hasher"), report)
	summary.print(stdout)
	if reportPath != "" {
		if err := writeReport(reportPath, stdout, summary); err != nil {
			return err
		}
	}
	if outDir != "" && runErr == nil {
		if err := writeKeyMaterial(outDir, wire.NewCodec(g), report); err != nil {
			return err
		}
	}
	return runErr
}

type participantReport struct {
	Index      uint32   `yaml:"index"`
	Status     string   `yaml:"status"`
	Error      string   `yaml:"error,omitempty"`
	PublicKey  string   `yaml:"public_key,omitempty"`
	Qualified  []uint32 `yaml:"qualified,omitempty"`
	Complaints []string `yaml:"complaints,omitempty"`
}

type runReport struct {
	Curve        string              `yaml:"curve"`
	Hasher       string              `yaml:"hasher"`
	Threshold    uint32              `yaml:"threshold"`
	Total        uint32              `yaml:"participants"`
	GroupKey     string              `yaml:"group_key,omitempty"`
	Excluded     []uint32            `yaml:"excluded,omitempty"`
	Silent       []uint32            `yaml:"silent,omitempty"`
	Participants []participantReport `yaml:"results"`
}

func newRunReport(cfg simulation.Config, hasher string, r *simulation.Report) *runReport {
	out := &runReport{
		Curve:     cfg.Group.Name(),
		Hasher:    hasher,
		Threshold: cfg.Threshold,
		Total:     cfg.Total,
		Excluded:  r.Excluded,
		Silent:    r.Silent,
	}
	if r.GroupKey != nil {
		out.GroupKey = hex.EncodeToString(r.GroupKey.Bytes())
	}
	for i := uint32(1); i <= cfg.Total; i++ {
		pr := participantReport{Index: i}
		switch res, err := r.Results[i], r.Errors[i]; {
		case res != nil:
			pr.Status = "ok"
			pr.PublicKey = hex.EncodeToString(res.KeyShare.PublicKey().Bytes())
			pr.Qualified = res.Qualified
			for _, c := range res.Complaints {
				pr.Complaints = append(pr.Complaints, c.String())
			}
		case err != nil:
			pr.Status = "failed"
			pr.Error = err.Error()
		default:
			pr.Status = "silent"
		}
		out.Participants = append(out.Participants, pr)
	}
	return out
}

func (r *runReport) print(w io.Writer) {
	fmt.Fprintf(w, "curve %s, t=%d, n=%d\n", r.Curve, r.Threshold, r.Total)
	for _, p := range r.Participants {
		switch p.Status {
		case "ok":
			fmt.Fprintf(w, "  participant %d: ok, qualified %v\n", p.Index, p.Qualified)
		case "failed":
			fmt.Fprintf(w, "  participant %d: failed: %s\n", p.Index, p.Error)
		default:
			fmt.Fprintf(w, "  participant %d: %s\n", p.Index, p.Status)
		}
	}
	if len(r.Excluded) > 0 {
		fmt.Fprintf(w, "excluded: %v\n", r.Excluded)
	}
	if r.GroupKey != "" {
		fmt.Fprintf(w, "group key: %s\n", r.GroupKey)
	}
}

func writeReport(path string, stdout io.Writer, r *runReport) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func writeKeyMaterial(dir string, codec *wire.Codec, r *simulation.Report) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, i := range r.Finished() {
		res := r.Results[i]
		data, err := codec.EncodeKeyMaterial(res.KeyShare, res.GroupKey)
		if err != nil {
			return fmt.Errorf("encoding key material of %d: %w", i, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("participant-%d.key", i))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing key material: %w", err)
		}
	}
	return nil
}
